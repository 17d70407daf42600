// Command workload drives exactly one adversarial step against a live
// chain per invocation, loading and persisting its state across restarts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"unicode"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/executor"
	"namadrift/internal/sdk"
	"namadrift/internal/step"
	"namadrift/internal/wconfig"
	"namadrift/internal/werr"
	"namadrift/internal/wlog"
	"namadrift/internal/wstate"
)

func main() {
	id := flag.Uint64("id", 0, "invocation id, selects the state file")
	seedFlag := flag.String("seed", "", "optional RNG seed (u64); ignored if state already exists")
	rpc := flag.String("rpc", "", "chain RPC endpoint")
	chainID := flag.String("chain-id", "", "chain identifier for transaction wrapping")
	faucetSK := flag.String("faucet-sk", "", "faucet secret key material (hex)")
	maspIndexerURL := flag.String("masp-indexer-url", "", "base URL for the MASP indexer")
	stepType := flag.String("step-type", "", "step kind to execute, lowercase-hyphenated")
	noCheck := flag.Bool("no-check", false, "skip post-condition checks (observation still occurs)")
	configPath := flag.String("config", "./workload.toml", "path to the workload's file-backed config")
	logFile := flag.String("log-file", "", "optional rotating log file path")
	flag.Parse()

	logger := wlog.Setup(wlog.Options{Service: "workload", LogFile: *logFile})

	if *rpc == "" || *chainID == "" || *stepType == "" {
		fmt.Fprintln(os.Stderr, "workload: --rpc, --chain-id, and --step-type are required")
		os.Exit(werr.KindOtherFailure.ExitCode())
	}

	stepName, ok := resolveStepName(*stepType)
	if !ok {
		fmt.Fprintf(os.Stderr, "workload: unknown --step-type %q\n", *stepType)
		os.Exit(werr.KindOtherFailure.ExitCode())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := wconfig.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("workload: failed to load config: %v", err))
	}
	for _, dir := range []string{cfg.StateDir, cfg.WalletDir, cfg.ShieldedDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			panic(fmt.Sprintf("workload: failed to create %s: %v", dir, err))
		}
	}

	var seedPtr *uint64
	if strings.TrimSpace(*seedFlag) != "" {
		seed, err := strconv.ParseUint(*seedFlag, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "workload: invalid --seed %q: %v\n", *seedFlag, err)
			os.Exit(werr.KindOtherFailure.ExitCode())
		}
		seedPtr = &seed
	}

	state, lock, err := wstate.Load(cfg.StateDir, *id, seedPtr)
	if err != nil {
		logger.Error("failed to load state", "id", *id, "error", err)
		os.Exit(werr.KindOf(err).ExitCode())
	}

	client, err := sdk.New(*rpc, *chainID)
	if err != nil {
		_ = lock.Release()
		panic(fmt.Sprintf("workload: failed to construct chain client: %v", err))
	}
	querier := chainquery.New(client)

	wallet, err := sdk.LoadWallet(filepath.Join(cfg.WalletDir, fmt.Sprintf("wallet-%d.toml", *id)))
	if err != nil {
		_ = lock.Release()
		panic(fmt.Sprintf("workload: failed to load wallet: %v", err))
	}
	logger = logger.With("wallet_id", wallet.ID())

	if _, found, err := wallet.Find(alias.Faucet); err != nil || !found {
		sk := strings.TrimSpace(*faucetSK)
		if sk == "" {
			sk, err = sdk.PromptSecretKeyHex("faucet secret key (hex): ")
			if err != nil {
				_ = lock.Release()
				fmt.Fprintf(os.Stderr, "workload: %v\n", err)
				os.Exit(werr.KindOtherFailure.ExitCode())
			}
		}
		key, err := sdk.PrivateKeyFromHex(sk)
		if err != nil {
			_ = lock.Release()
			fmt.Fprintf(os.Stderr, "workload: invalid faucet secret key: %v\n", err)
			os.Exit(werr.KindOtherFailure.ExitCode())
		}
		if err := wallet.Insert(alias.Faucet, key); err != nil {
			_ = lock.Release()
			panic(fmt.Sprintf("workload: failed to insert faucet key: %v", err))
		}
		if err := wallet.Save(); err != nil {
			_ = lock.Release()
			panic(fmt.Sprintf("workload: failed to save wallet: %v", err))
		}
	}

	shieldedCtx, err := sdk.LoadShieldedContext(filepath.Join(cfg.ShieldedDir, fmt.Sprintf("shielded-%d.dat", *id)))
	if err != nil {
		_ = lock.Release()
		panic(fmt.Sprintf("workload: failed to load shielded context: %v", err))
	}
	shieldedCtx.SetIndexerURL(*maspIndexerURL)
	if height, err := querier.BlockHeight(ctx); err == nil {
		if err := shieldedCtx.Sync(ctx, client, height); err != nil {
			logger.Warn("shielded context sync failed, continuing with stale context", "error", err)
		} else if err := shieldedCtx.Save(); err != nil {
			logger.Warn("failed to persist shielded context", "error", err)
		}
	}

	execCfg := executor.Config{
		Client:  client,
		Querier: querier,
		Wallet:  wallet,
		NoCheck: *noCheck,
		Logger:  logger,
	}

	if err := executor.Init(ctx, execCfg); err != nil {
		persist(cfg, *id, state, lock, logger)
		logger.Error("init failed", "error", err)
		os.Exit(werr.KindOf(err).ExitCode())
	}

	outcome := executor.Run(ctx, execCfg, state, stepName)
	persist(cfg, *id, state, lock, logger)

	if outcome.Err != nil {
		logger.Error("step failed", "step", stepName, "kind", outcome.Kind, "error", outcome.Err)
	} else {
		logger.Info("step finished", "step", stepName, "exit_code", outcome.Kind.ExitCode())
	}
	os.Exit(outcome.Kind.ExitCode())
}

func persist(cfg wconfig.Config, id uint64, state *wstate.State, lock *wstate.LockHandle, logger interface {
	Error(msg string, args ...any)
}) {
	if err := wstate.Save(cfg.StateDir, id, state, lock); err != nil {
		logger.Error("failed to persist state", "id", id, "error", err)
	}
}

// resolveStepName converts a lowercase-hyphenated CLI value (e.g.
// "transparent-transfer") into its catalog name (e.g. "TransparentTransfer").
func resolveStepName(flagValue string) (string, bool) {
	for name := range step.ByName {
		if hyphenate(name) == flagValue {
			return name, true
		}
	}
	return "", false
}

func hyphenate(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

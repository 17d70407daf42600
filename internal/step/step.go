// Package step is the step catalog (C5): one entry per workload step kind,
// each a pure is_valid precondition over local state plus a build_tasks
// that may query the chain for epoch/validator-set data but must draw all
// randomness through the State's RNG.
package step

import (
	"context"
	"fmt"

	"namadrift/internal/alias"
	"namadrift/internal/chainquery"
	"namadrift/internal/task"
	"namadrift/internal/wstate"
)

// Step is one step kind: a precondition and a task builder.
type Step interface {
	Name() string
	IsValid(s *wstate.State, epoch uint64) bool
	BuildTasks(ctx context.Context, q *chainquery.Querier, s *wstate.State, epoch uint64) ([]task.Task, error)
}

// ByName indexes every step kind by its catalog name, used by the CLI's
// --step-type flag and the executor's dispatch.
var ByName = map[string]Step{}

func register(s Step) Step {
	ByName[s.Name()] = s
	return s
}

func freshAlias(prefix string, s *wstate.State) alias.Alias {
	return alias.New(fmt.Sprintf("%s-%d", prefix, s.RandomUint64Between(0, 1<<32)))
}

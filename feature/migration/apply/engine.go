package apply

import (
	"context"
	"time"

	"accounting-sync/feature/migration/errs"

	"go.uber.org/zap"
)

// Applier writes the rows of one entity.
type Applier interface {
	Entity() string
	Apply(ctx context.Context, rc *RunContext) (EntitySummary, error)
}

// Func adapts a function into an Applier.
func Func(entity string, fn func(ctx context.Context, rc *RunContext, sum *EntitySummary) error) Applier {
	return funcApplier{entity: entity, fn: fn}
}

type funcApplier struct {
	entity string
	fn     func(ctx context.Context, rc *RunContext, sum *EntitySummary) error
}

func (a funcApplier) Entity() string { return a.entity }

func (a funcApplier) Apply(ctx context.Context, rc *RunContext) (EntitySummary, error) {
	var sum EntitySummary
	err := a.fn(ctx, rc, &sum)
	return sum, err
}

// Engine runs appliers stage by stage. Each stage completes for every one of
// its entities before the next begins.
type Engine struct {
	Stages [][]Applier
}

// NewEngine returns the engine with the dependency-ordered stages.
func NewEngine() *Engine {
	return &Engine{Stages: DefaultStages()}
}

// DefaultStages orders entities so parents are applied before dependents.
func DefaultStages() [][]Applier {
	return [][]Applier{
		{Users(), Accounts(), Counterparties(), Products()},
		{Sessions(), Movements(), CashFlow(), Periods(), JournalEntries()},
		{JournalLines(), InventoryLots(), KardexMovements(), FiscalDocuments(), Reconciliations(), TaxConfigs()},
	}
}

// Run applies every stage on rc.Tx. The first failure is returned as a
// TransactionError naming the entity; the caller owns rollback.
func (e *Engine) Run(ctx context.Context, rc *RunContext) (Summary, error) {
	summary := make(Summary)
	for i, stage := range e.Stages {
		for _, a := range stage {
			if ctx.Err() != nil {
				return summary, &errs.TransactionError{BatchID: rc.BatchID, Entity: a.Entity(), Err: context.Cause(ctx)}
			}
			start := time.Now()
			sum, err := a.Apply(ctx, rc)
			if err != nil {
				return summary, &errs.TransactionError{BatchID: rc.BatchID, Entity: a.Entity(), Err: err}
			}
			summary[a.Entity()] = sum
			rc.Logger.Info("Entity applied",
				zap.Int("stage", i+1),
				zap.String("entity", a.Entity()),
				zap.Int("applied", sum.Applied),
				zap.Int("skipped", sum.Skipped),
				zap.Int("dropped", sum.Dropped),
				zap.Duration("duration", time.Since(start)),
			)
		}
	}
	return summary, nil
}

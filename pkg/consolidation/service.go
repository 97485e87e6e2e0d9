package consolidation

import (
	"context"
	"time"

	"github.com/orcaposte/orcaposte/pkg/budget"
	log "github.com/sirupsen/logrus"
)

// BudgetReader loads a budget together with its whole post tree.
type BudgetReader interface {
	GetSnapshot(ctx context.Context, budgetId int) (budget.Snapshot, error)
}

// Observer receives the duration and size of every consolidation.
type Observer interface {
	ObserveConsolidation(duration time.Duration, lines int)
}

type noopObserver struct{}

func (noopObserver) ObserveConsolidation(time.Duration, int) {}

// Report is the bill of materials of one budget.
type Report struct {
	Budget budget.Budget
	Result
}

type Service interface {
	GetBudgetMaterials(ctx context.Context, budgetId int) (Report, error)
}

type ServiceImpl struct {
	budgets  BudgetReader
	engine   *Engine
	observer Observer
}

func NewService(budgets BudgetReader, engine *Engine, observer Observer) *ServiceImpl {
	if observer == nil {
		observer = noopObserver{}
	}
	return &ServiceImpl{budgets: budgets, engine: engine, observer: observer}
}

func (s *ServiceImpl) GetBudgetMaterials(ctx context.Context, budgetId int) (Report, error) {
	snapshot, err := s.budgets.GetSnapshot(ctx, budgetId)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	result := s.engine.Consolidate(snapshot.Posts)
	elapsed := time.Since(start)
	s.observer.ObserveConsolidation(elapsed, len(result.Lines))

	log.WithFields(log.Fields{
		"budget_id": budgetId,
		"posts":     len(snapshot.Posts),
		"lines":     len(result.Lines),
		"elapsed":   elapsed,
	}).Debug("consolidated budget materials")

	return Report{Budget: snapshot.Budget, Result: result}, nil
}

package app

import (
	"fmt"

	"github.com/orcaposte/orcaposte/internal/config"
	"github.com/orcaposte/orcaposte/internal/database"
	"github.com/orcaposte/orcaposte/internal/metrics"
	"github.com/orcaposte/orcaposte/internal/utils"
	"github.com/orcaposte/orcaposte/pkg/budget"
	"github.com/orcaposte/orcaposte/pkg/catalog"
	"github.com/orcaposte/orcaposte/pkg/consolidation"
	"github.com/orcaposte/orcaposte/pkg/folder"
	"github.com/orcaposte/orcaposte/pkg/itemgroup"
	"golang.org/x/text/language"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Metrics *metrics.Metrics
	Clock   utils.Clock

	CatalogService *catalog.ServiceImpl
	CatalogHandler *catalog.Handler

	ItemGroupService *itemgroup.ServiceImpl
	ItemGroupHandler *itemgroup.Handler

	BudgetService *budget.ServiceImpl
	BudgetHandler *budget.Handler

	FolderService *folder.ServiceImpl
	FolderHandler *folder.Handler

	ConsolidationService *consolidation.ServiceImpl
	ConsolidationHandler *consolidation.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db database.DB, cfg config.Application) (*Dependencies, error) {
	locale, err := language.Parse(cfg.Consolidation.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid consolidation locale %q: %w", cfg.Consolidation.Locale, err)
	}

	deps := &Dependencies{}
	deps.Metrics = metrics.New()
	deps.Clock = &utils.SystemClock{}

	deps.CatalogService = catalog.NewService(catalog.NewRepository(db))
	deps.CatalogHandler = catalog.NewHandler(deps.CatalogService)

	deps.ItemGroupService = itemgroup.NewService(itemgroup.NewRepository(db), deps.CatalogService)
	deps.ItemGroupHandler = itemgroup.NewHandler(deps.ItemGroupService)

	deps.BudgetService = budget.NewService(budget.NewRepository(db), deps.CatalogService, deps.ItemGroupService, deps.Clock)
	deps.BudgetHandler = budget.NewHandler(deps.BudgetService)

	deps.FolderService = folder.NewService(folder.NewRepository(db), deps.BudgetService)
	deps.FolderHandler = folder.NewHandler(deps.FolderService)

	var observer consolidation.Observer
	if cfg.Metrics.Enabled {
		observer = deps.Metrics
	}
	deps.ConsolidationService = consolidation.NewService(deps.BudgetService, consolidation.NewEngine(locale), observer)
	deps.ConsolidationHandler = consolidation.NewHandler(
		deps.ConsolidationService,
		consolidation.NewCsvRenderer(),
		consolidation.NewXlsxRenderer(),
	)

	return deps, nil
}

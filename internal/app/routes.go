package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/orcaposte/orcaposte/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	// Catalog
	r.HandleFunc("/api/material", deps.CatalogHandler.ListMaterials).Methods("GET")
	r.HandleFunc("/api/material", deps.CatalogHandler.CreateMaterial).Methods("POST")
	r.HandleFunc("/api/material/{materialId}", deps.CatalogHandler.GetMaterial).Methods("GET")
	r.HandleFunc("/api/material/{materialId}", deps.CatalogHandler.UpdateMaterial).Methods("PUT")
	r.HandleFunc("/api/material/{materialId}", deps.CatalogHandler.DeleteMaterial).Methods("DELETE")
	r.HandleFunc("/api/posttype", deps.CatalogHandler.ListPostTypes).Methods("GET")

	// Item group templates
	r.HandleFunc("/api/itemgroup", deps.ItemGroupHandler.ListTemplates).Methods("GET")
	r.HandleFunc("/api/itemgroup", deps.ItemGroupHandler.CreateTemplate).Methods("POST")
	r.HandleFunc("/api/itemgroup/{templateId}", deps.ItemGroupHandler.GetTemplate).Methods("GET")
	r.HandleFunc("/api/itemgroup/{templateId}", deps.ItemGroupHandler.UpdateTemplate).Methods("PUT")
	r.HandleFunc("/api/itemgroup/{templateId}", deps.ItemGroupHandler.DeleteTemplate).Methods("DELETE")

	// Budgets
	r.HandleFunc("/api/budget", deps.BudgetHandler.ListBudgets).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.CreateBudget).Methods("POST")
	r.HandleFunc("/api/budget/{budgetId}", deps.BudgetHandler.GetBudget).Methods("GET")
	r.HandleFunc("/api/budget/{budgetId}", deps.BudgetHandler.UpdateBudget).Methods("PUT")
	r.HandleFunc("/api/budget/{budgetId}", deps.BudgetHandler.DeleteBudget).Methods("DELETE")
	r.HandleFunc("/api/budget/{budgetId}/status", deps.BudgetHandler.SetStatus).Methods("PUT")
	r.HandleFunc("/api/budget/{budgetId}/folder", deps.FolderHandler.MoveBudget).Methods("PUT")

	// Posts
	r.HandleFunc("/api/budget/{budgetId}/post", deps.BudgetHandler.ListPosts).Methods("GET")
	r.HandleFunc("/api/budget/{budgetId}/post", deps.BudgetHandler.AddPost).Methods("POST")
	r.HandleFunc("/api/budget/{budgetId}/post/{postId}", deps.BudgetHandler.UpdatePost).Methods("PUT")
	r.HandleFunc("/api/budget/{budgetId}/post/{postId}", deps.BudgetHandler.DeletePost).Methods("DELETE")
	r.HandleFunc("/api/budget/{budgetId}/post/{postId}/itemgroup", deps.BudgetHandler.AddItemGroup).Methods("POST")
	r.HandleFunc("/api/budget/{budgetId}/post/{postId}/itemgroup/{groupId}", deps.BudgetHandler.RemoveItemGroup).Methods("DELETE")
	r.HandleFunc("/api/budget/{budgetId}/post/{postId}/material", deps.BudgetHandler.AddLooseMaterial).Methods("POST")
	r.HandleFunc("/api/budget/{budgetId}/post/{postId}/material/{entryId}", deps.BudgetHandler.UpdateLooseMaterial).Methods("PUT")
	r.HandleFunc("/api/budget/{budgetId}/post/{postId}/material/{entryId}", deps.BudgetHandler.RemoveLooseMaterial).Methods("DELETE")

	// Consolidated materials
	r.HandleFunc("/api/budget/{budgetId}/materials", deps.ConsolidationHandler.GetMaterials).Methods("GET")
	r.HandleFunc("/api/budget/{budgetId}/materials/export", deps.ConsolidationHandler.ExportMaterials).Methods("GET")

	// Folders
	r.HandleFunc("/api/folder", deps.FolderHandler.List).Methods("GET")
	r.HandleFunc("/api/folder", deps.FolderHandler.Create).Methods("POST")
	r.HandleFunc("/api/folder/{folderId}", deps.FolderHandler.Get).Methods("GET")
	r.HandleFunc("/api/folder/{folderId}", deps.FolderHandler.Rename).Methods("PUT")
	r.HandleFunc("/api/folder/{folderId}", deps.FolderHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/folder/{folderId}/parent", deps.FolderHandler.Move).Methods("PUT")
	r.HandleFunc("/api/folder/{folderId}/path", deps.FolderHandler.Path).Methods("GET")
	r.HandleFunc("/api/folder/{folderId}/descendants", deps.FolderHandler.Descendants).Methods("GET")
	r.HandleFunc("/api/folder/{folderId}/descendant/{candidateId}", deps.FolderHandler.IsDescendant).Methods("GET")
}

package consolidation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type LineDTO struct {
	MaterialId    int             `json:"materialId"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type ReportDTO struct {
	BudgetId   int             `json:"budgetId"`
	BudgetName string          `json:"budgetName"`
	Lines      []LineDTO       `json:"lines"`
	TotalCost  decimal.Decimal `json:"totalCost"`
}

type Handler struct {
	service   Service
	renderers map[string]Renderer
}

func NewHandler(service Service, renderers ...Renderer) *Handler {
	byFormat := make(map[string]Renderer, len(renderers))
	for _, renderer := range renderers {
		byFormat[renderer.Extension()] = renderer
	}
	return &Handler{service: service, renderers: byFormat}
}

// GetMaterials godoc
// @Summary Consolidated bill of materials of a budget
// @Description Materials of all posts summed per material, priced at the first captured price, sorted by name.
// @Tags Budget
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Success 200 {object} ReportDTO
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId}/materials [get]
func (h *Handler) GetMaterials(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting budget materials")
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := h.service.GetBudgetMaterials(r.Context(), budgetId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ReportToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ExportMaterials godoc
// @Summary Download the bill of materials
// @Tags Budget
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param budgetId path int true "Budget ID"
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {string} string "Unsupported format"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId}/materials/export [get]
func (h *Handler) ExportMaterials(w http.ResponseWriter, r *http.Request) {
	budgetId, err := strconv.Atoi(mux.Vars(r)["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	renderer, ok := h.renderers[format]
	if !ok {
		http.Error(w, fmt.Sprintf("Unsupported format: %s", format), http.StatusBadRequest)
		return
	}

	report, err := h.service.GetBudgetMaterials(r.Context(), budgetId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	content, err := renderer.Render(report)
	if err != nil {
		log.Errorf("failed to render materials of budget %d as %s: %v", budgetId, format, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("orcamento-%d-materiais.%s", budgetId, renderer.Extension())
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		log.Errorf("failed to write export: %v", err)
	}
}

func ReportToDTO(report Report) ReportDTO {
	lines := make([]LineDTO, 0, len(report.Lines))
	for _, line := range report.Lines {
		lines = append(lines, LineDTO{
			MaterialId:    line.MaterialId,
			Code:          line.Code,
			Name:          line.Name,
			Unit:          line.Unit,
			UnitPrice:     line.UnitPrice,
			TotalQuantity: line.TotalQuantity,
			Subtotal:      line.Subtotal,
		})
	}
	return ReportDTO{
		BudgetId:   report.Budget.Id,
		BudgetName: report.Budget.Name,
		Lines:      lines,
		TotalCost:  report.TotalCost,
	}
}

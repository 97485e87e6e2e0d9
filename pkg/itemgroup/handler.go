package itemgroup

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type TemplateDTO struct {
	Id          int                   `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	CompanyId   int                   `json:"companyId"`
	Materials   []TemplateMaterialDTO `json:"materials"`
}

type TemplateMaterialDTO struct {
	MaterialId int             `json:"materialId"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListTemplates godoc
// @Summary List item group templates
// @Tags ItemGroup
// @Produce json
// @Param companyId query int false "Only templates of this company"
// @Success 200 {array} TemplateDTO
// @Router /api/itemgroup [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing item group templates")
	w.Header().Set("Content-Type", "application/json")
	var companyId *int
	if value := r.URL.Query().Get("companyId"); value != "" {
		id, err := strconv.Atoi(value)
		if err != nil {
			http.Error(w, "Invalid companyId", http.StatusBadRequest)
			return
		}
		companyId = &id
	}
	templates, err := h.service.ListTemplates(r.Context(), companyId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	dtos := make([]TemplateDTO, 0, len(templates))
	for _, template := range templates {
		dtos = append(dtos, TemplateToDTO(template))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// GetTemplate godoc
// @Summary Get an item group template
// @Tags ItemGroup
// @Produce json
// @Param templateId path int true "Template ID"
// @Success 200 {object} TemplateDTO
// @Failure 404 {string} string "Template not found"
// @Router /api/itemgroup/{templateId} [get]
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	templateId, err := strconv.Atoi(mux.Vars(r)["templateId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	template, err := h.service.GetTemplate(r.Context(), templateId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(TemplateToDTO(template)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CreateTemplate godoc
// @Summary Create an item group template
// @Tags ItemGroup
// @Accept json
// @Produce json
// @Param template body TemplateDTO true "Template"
// @Success 201 {object} TemplateDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/itemgroup [post]
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating item group template")
	w.Header().Set("Content-Type", "application/json")
	var dto TemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	template, err := h.service.CreateTemplate(r.Context(), DTOToTemplate(dto))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(TemplateToDTO(template)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpdateTemplate godoc
// @Summary Update an item group template
// @Description Replaces the material list. Groups already attached to posts keep their own copy.
// @Tags ItemGroup
// @Accept json
// @Produce json
// @Param templateId path int true "Template ID"
// @Param template body TemplateDTO true "Template"
// @Success 200 {object} TemplateDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Template not found"
// @Router /api/itemgroup/{templateId} [put]
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating item group template")
	w.Header().Set("Content-Type", "application/json")
	templateId, err := strconv.Atoi(mux.Vars(r)["templateId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto TemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id != 0 && dto.Id != templateId {
		http.Error(w, "Invalid template id in request body", http.StatusBadRequest)
		return
	}
	dto.Id = templateId
	template, err := h.service.UpdateTemplate(r.Context(), DTOToTemplate(dto))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(TemplateToDTO(template)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteTemplate godoc
// @Summary Delete an item group template
// @Tags ItemGroup
// @Param templateId path int true "Template ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Template not found"
// @Router /api/itemgroup/{templateId} [delete]
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateId, err := strconv.Atoi(mux.Vars(r)["templateId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteTemplate(r.Context(), templateId); err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func TemplateToDTO(template Template) TemplateDTO {
	materials := make([]TemplateMaterialDTO, 0, len(template.Materials))
	for _, m := range template.Materials {
		materials = append(materials, TemplateMaterialDTO{MaterialId: m.MaterialId, Quantity: m.Quantity})
	}
	return TemplateDTO{
		Id:          template.Id,
		Name:        template.Name,
		Description: template.Description,
		CompanyId:   template.CompanyId,
		Materials:   materials,
	}
}

func DTOToTemplate(dto TemplateDTO) Template {
	materials := make([]TemplateMaterial, 0, len(dto.Materials))
	for _, m := range dto.Materials {
		materials = append(materials, TemplateMaterial{MaterialId: m.MaterialId, Quantity: m.Quantity})
	}
	return Template{
		Id:          dto.Id,
		Name:        dto.Name,
		Description: dto.Description,
		CompanyId:   dto.CompanyId,
		Materials:   materials,
	}
}

package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type MaterialDTO struct {
	Id        int             `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type PostTypeDTO struct {
	Id         int    `json:"id"`
	Name       string `json:"name"`
	MaterialId *int   `json:"materialId,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListMaterials godoc
// @Summary List catalog materials
// @Tags Material
// @Produce json
// @Success 200 {array} MaterialDTO
// @Router /api/material [get]
func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing materials")
	w.Header().Set("Content-Type", "application/json")
	materials, err := h.service.ListMaterials(r.Context())
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	dtos := make([]MaterialDTO, 0, len(materials))
	for _, material := range materials {
		dtos = append(dtos, MaterialToDTO(material))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// GetMaterial godoc
// @Summary Get a catalog material
// @Tags Material
// @Produce json
// @Param materialId path int true "Material ID"
// @Success 200 {object} MaterialDTO
// @Failure 404 {string} string "Material not found"
// @Router /api/material/{materialId} [get]
func (h *Handler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	materialId, err := strconv.Atoi(mux.Vars(r)["materialId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	material, err := h.service.GetMaterial(r.Context(), materialId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(MaterialToDTO(material)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CreateMaterial godoc
// @Summary Create a catalog material
// @Tags Material
// @Accept json
// @Produce json
// @Param material body MaterialDTO true "Material"
// @Success 201 {object} MaterialDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/material [post]
func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating material")
	w.Header().Set("Content-Type", "application/json")
	var dto MaterialDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	material, err := h.service.CreateMaterial(r.Context(), DTOToMaterial(dto))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(MaterialToDTO(material)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpdateMaterial godoc
// @Summary Update a catalog material
// @Tags Material
// @Accept json
// @Produce json
// @Param materialId path int true "Material ID"
// @Param material body MaterialDTO true "Material"
// @Success 200 {object} MaterialDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Material not found"
// @Router /api/material/{materialId} [put]
func (h *Handler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating material")
	w.Header().Set("Content-Type", "application/json")
	materialId, err := strconv.Atoi(mux.Vars(r)["materialId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto MaterialDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id != 0 && dto.Id != materialId {
		http.Error(w, "Invalid material id in request body", http.StatusBadRequest)
		return
	}
	dto.Id = materialId
	material, err := h.service.UpdateMaterial(r.Context(), DTOToMaterial(dto))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(MaterialToDTO(material)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteMaterial godoc
// @Summary Delete a catalog material
// @Description Lines already attached to posts keep their last-known code, name and unit.
// @Tags Material
// @Param materialId path int true "Material ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Material not found"
// @Router /api/material/{materialId} [delete]
func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	materialId, err := strconv.Atoi(mux.Vars(r)["materialId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteMaterial(r.Context(), materialId); err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPostTypes godoc
// @Summary List post types
// @Tags PostType
// @Produce json
// @Success 200 {array} PostTypeDTO
// @Router /api/posttype [get]
func (h *Handler) ListPostTypes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	postTypes, err := h.service.ListPostTypes(r.Context())
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	dtos := make([]PostTypeDTO, 0, len(postTypes))
	for _, postType := range postTypes {
		dtos = append(dtos, PostTypeDTO{Id: postType.Id, Name: postType.Name, MaterialId: postType.MaterialId})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func MaterialToDTO(material Material) MaterialDTO {
	return MaterialDTO{
		Id:        material.Id,
		Code:      material.Code,
		Name:      material.Name,
		Unit:      material.Unit,
		UnitPrice: material.UnitPrice,
	}
}

func DTOToMaterial(dto MaterialDTO) Material {
	return Material{
		Id:        dto.Id,
		Code:      dto.Code,
		Name:      dto.Name,
		Unit:      dto.Unit,
		UnitPrice: dto.UnitPrice,
	}
}

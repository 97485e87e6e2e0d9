package folder

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/orcaposte/orcaposte/internal/apperrors"
	log "github.com/sirupsen/logrus"
)

type FolderDTO struct {
	Id       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	ParentId *int   `json:"parentId"`
}

type ParentDTO struct {
	ParentId *int `json:"parentId"`
}

type BudgetFolderDTO struct {
	FolderId *int `json:"folderId"`
}

type MoveResultDTO struct {
	Folder  FolderDTO `json:"folder"`
	Changed bool      `json:"changed"`
}

type DeleteResultDTO struct {
	Deleted       FolderDTO `json:"deleted"`
	ReparentedIds []int     `json:"reparentedIds"`
}

type DescendantDTO struct {
	Descendant bool `json:"descendant"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// List godoc
// @Summary List folders
// @Description Without parameters every folder is returned. parentId lists the children of one folder and root=true lists root folders.
// @Tags Folder
// @Produce json
// @Param parentId query int false "Parent folder ID"
// @Param root query bool false "Only root folders"
// @Success 200 {array} FolderDTO
// @Router /api/folder [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	query := r.URL.Query()

	var (
		folders []Folder
		err     error
	)
	switch {
	case query.Get("parentId") != "":
		parentId, convErr := strconv.Atoi(query.Get("parentId"))
		if convErr != nil {
			http.Error(w, "invalid parentId", http.StatusBadRequest)
			return
		}
		folders, err = h.service.ListChildren(r.Context(), &parentId)
	case query.Get("root") == "true":
		folders, err = h.service.ListChildren(r.Context(), nil)
	default:
		folders, err = h.service.List(r.Context())
	}
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(folders))
}

// Get godoc
// @Summary Get a folder
// @Tags Folder
// @Produce json
// @Param folderId path int true "Folder ID"
// @Success 200 {object} FolderDTO
// @Failure 404 {string} string "Folder not found"
// @Router /api/folder/{folderId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	folderId, err := pathInt(r, "folderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	folder, err := h.service.Get(r.Context(), folderId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(folder))
}

// Create godoc
// @Summary Create a folder
// @Tags Folder
// @Accept json
// @Produce json
// @Param folder body FolderDTO true "Folder"
// @Success 201 {object} FolderDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Parent folder not found"
// @Router /api/folder [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating folder")
	w.Header().Set("Content-Type", "application/json")
	var dto FolderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	folder, err := h.service.Create(r.Context(), dto.Name, dto.Color, dto.ParentId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(folder))
}

// Rename godoc
// @Summary Rename a folder
// @Description Only name and color are changed. Use the parent endpoint to move a folder.
// @Tags Folder
// @Accept json
// @Produce json
// @Param folderId path int true "Folder ID"
// @Param folder body FolderDTO true "Folder"
// @Success 200 {object} FolderDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Folder not found"
// @Router /api/folder/{folderId} [put]
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	folderId, err := pathInt(r, "folderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto FolderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id != 0 && dto.Id != folderId {
		http.Error(w, "Invalid folder id in request body", http.StatusBadRequest)
		return
	}
	folder, err := h.service.Rename(r.Context(), folderId, dto.Name, dto.Color)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(folder))
}

// Delete godoc
// @Summary Delete a folder
// @Description Child folders move up to the deleted folder's parent and its budgets move to the root.
// @Tags Folder
// @Produce json
// @Param folderId path int true "Folder ID"
// @Success 200 {object} DeleteResultDTO
// @Failure 404 {string} string "Folder not found"
// @Router /api/folder/{folderId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	folderId, err := pathInt(r, "folderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.service.Delete(r.Context(), folderId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	reparented := result.ReparentedIds
	if reparented == nil {
		reparented = []int{}
	}
	writeJSON(w, http.StatusOK, DeleteResultDTO{Deleted: toDTO(result.Deleted), ReparentedIds: reparented})
}

// Move godoc
// @Summary Move a folder
// @Description A null parentId moves the folder to the root.
// @Tags Folder
// @Accept json
// @Produce json
// @Param folderId path int true "Folder ID"
// @Param parent body ParentDTO true "New parent"
// @Success 200 {object} MoveResultDTO
// @Failure 400 {string} string "Self-parenting or cycle"
// @Failure 404 {string} string "Folder not found"
// @Router /api/folder/{folderId}/parent [put]
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	folderId, err := pathInt(r, "folderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ParentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	folder, changed, err := h.service.Move(r.Context(), folderId, dto.ParentId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MoveResultDTO{Folder: toDTO(folder), Changed: changed})
}

// Path godoc
// @Summary Folder breadcrumb
// @Description Folders from the root down to the given folder, inclusive.
// @Tags Folder
// @Produce json
// @Param folderId path int true "Folder ID"
// @Success 200 {array} FolderDTO
// @Failure 404 {string} string "Folder not found"
// @Router /api/folder/{folderId}/path [get]
func (h *Handler) Path(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	folderId, err := pathInt(r, "folderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	path, err := h.service.Path(r.Context(), &folderId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(path))
}

// Descendants godoc
// @Summary Folder descendant ids
// @Tags Folder
// @Produce json
// @Param folderId path int true "Folder ID"
// @Success 200 {array} int
// @Failure 404 {string} string "Folder not found"
// @Router /api/folder/{folderId}/descendants [get]
func (h *Handler) Descendants(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	folderId, err := pathInt(r, "folderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ids, err := h.service.DescendantIds(r.Context(), folderId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// IsDescendant godoc
// @Summary Check folder ancestry
// @Description Reports whether candidateId lies somewhere below folderId.
// @Tags Folder
// @Produce json
// @Param folderId path int true "Folder ID"
// @Param candidateId path int true "Candidate folder ID"
// @Success 200 {object} DescendantDTO
// @Failure 404 {string} string "Folder not found"
// @Router /api/folder/{folderId}/descendant/{candidateId} [get]
func (h *Handler) IsDescendant(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	folderId, err := pathInt(r, "folderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	candidateId, err := pathInt(r, "candidateId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	descendant, err := h.service.IsDescendant(r.Context(), candidateId, folderId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DescendantDTO{Descendant: descendant})
}

// MoveBudget godoc
// @Summary File a budget in a folder
// @Description A null folderId moves the budget to the root.
// @Tags Folder
// @Accept json
// @Param budgetId path int true "Budget ID"
// @Param folder body BudgetFolderDTO true "Target folder"
// @Success 204 "No Content"
// @Failure 404 {string} string "Budget or folder not found"
// @Router /api/budget/{budgetId}/folder [put]
func (h *Handler) MoveBudget(w http.ResponseWriter, r *http.Request) {
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto BudgetFolderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.MoveBudget(r.Context(), budgetId, dto.FolderId); err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toDTO(folder Folder) FolderDTO {
	return FolderDTO{Id: folder.Id, Name: folder.Name, Color: folder.Color, ParentId: folder.ParentId}
}

func toDTOs(folders []Folder) []FolderDTO {
	dtos := make([]FolderDTO, 0, len(folders))
	for _, folder := range folders {
		dtos = append(dtos, toDTO(folder))
	}
	return dtos
}

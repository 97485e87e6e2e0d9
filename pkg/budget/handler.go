package budget

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	Id         int       `json:"id"`
	Name       string    `json:"name"`
	CompanyId  int       `json:"companyId"`
	ClientName string    `json:"clientName,omitempty"`
	City       string    `json:"city,omitempty"`
	Status     string    `json:"status"`
	FolderId   *int      `json:"folderId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type StatusDTO struct {
	Status string `json:"status"`
}

type PostDTO struct {
	Id             int                `json:"id"`
	Name           string             `json:"name"`
	PostTypeId     int                `json:"postTypeId"`
	X              float64            `json:"x"`
	Y              float64            `json:"y"`
	ItemGroups     []ItemGroupDTO     `json:"itemGroups"`
	LooseMaterials []MaterialEntryDTO `json:"looseMaterials"`
}

type ItemGroupDTO struct {
	Id         int                `json:"id"`
	Name       string             `json:"name"`
	TemplateId *int               `json:"templateId"`
	Lines      []MaterialEntryDTO `json:"lines"`
}

type MaterialEntryDTO struct {
	Id              int             `json:"id"`
	MaterialId      int             `json:"materialId"`
	Quantity        decimal.Decimal `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"priceAtAddition"`
	Code            string          `json:"code,omitempty"`
	Name            string          `json:"name,omitempty"`
	Unit            string          `json:"unit,omitempty"`
}

type AddItemGroupDTO struct {
	TemplateId int `json:"templateId"`
}

type AddMaterialDTO struct {
	MaterialId int             `json:"materialId"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type QuantityDTO struct {
	Quantity decimal.Decimal `json:"quantity"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
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

// ListBudgets godoc
// @Summary List budgets
// @Tags Budget
// @Produce json
// @Param folderId query int false "Only budgets directly inside this folder"
// @Param root query bool false "Only budgets at the root"
// @Success 200 {array} BudgetDTO
// @Router /api/budget [get]
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing budgets")
	w.Header().Set("Content-Type", "application/json")
	var filter ListFilter
	if value := r.URL.Query().Get("folderId"); value != "" {
		folderId, err := strconv.Atoi(value)
		if err != nil {
			http.Error(w, "Invalid folderId", http.StatusBadRequest)
			return
		}
		filter.FolderId = &folderId
	}
	filter.RootOnly = r.URL.Query().Get("root") == "true"

	budgets, err := h.service.ListBudgets(r.Context(), filter)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	dtos := make([]BudgetDTO, 0, len(budgets))
	for _, budget := range budgets {
		dtos = append(dtos, BudgetToDTO(budget))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBudget godoc
// @Summary Get a budget
// @Tags Budget
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Success 200 {object} BudgetDTO
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId} [get]
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	budget, err := h.service.GetBudget(r.Context(), budgetId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BudgetToDTO(budget))
}

// CreateBudget godoc
// @Summary Create a budget
// @Description New budgets start in progress at the root.
// @Tags Budget
// @Accept json
// @Produce json
// @Param budget body BudgetDTO true "Budget"
// @Success 201 {object} BudgetDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/budget [post]
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating budget")
	w.Header().Set("Content-Type", "application/json")
	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	budget, err := h.service.CreateBudget(r.Context(), DTOToBudget(dto))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, BudgetToDTO(budget))
}

// UpdateBudget godoc
// @Summary Update budget details
// @Tags Budget
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param budget body BudgetDTO true "Budget"
// @Success 200 {object} BudgetDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId} [put]
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating budget")
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id != 0 && dto.Id != budgetId {
		http.Error(w, "Invalid budget id in request body", http.StatusBadRequest)
		return
	}
	dto.Id = budgetId
	budget, err := h.service.UpdateBudget(r.Context(), DTOToBudget(dto))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BudgetToDTO(budget))
}

// SetStatus godoc
// @Summary Change budget status
// @Description A finalized budget rejects any change to its posts.
// @Tags Budget
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param status body StatusDTO true "in_progress or finalized"
// @Success 200 {object} BudgetDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId}/status [put]
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto StatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	budget, err := h.service.SetStatus(r.Context(), budgetId, Status(dto.Status))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BudgetToDTO(budget))
}

// DeleteBudget godoc
// @Summary Delete a budget with all its posts
// @Tags Budget
// @Param budgetId path int true "Budget ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId} [delete]
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteBudget(r.Context(), budgetId); err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPosts godoc
// @Summary List posts of a budget with their item groups and loose materials
// @Tags Post
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Success 200 {array} PostDTO
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId}/post [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snapshot, err := h.service.GetSnapshot(r.Context(), budgetId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	dtos := make([]PostDTO, 0, len(snapshot.Posts))
	for _, post := range snapshot.Posts {
		dtos = append(dtos, PostToDTO(post))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddPost godoc
// @Summary Place a post on a budget
// @Tags Post
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param post body PostDTO true "Post"
// @Success 201 {object} PostDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{budgetId}/post [post]
func (h *Handler) AddPost(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding post")
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto PostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	post, err := h.service.AddPost(r.Context(), budgetId, DTOToPost(dto))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PostToDTO(post))
}

// UpdatePost godoc
// @Summary Rename, retype or move a post
// @Tags Post
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param postId path int true "Post ID"
// @Param post body PostDTO true "Post"
// @Success 200 {object} PostDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Post not found"
// @Router /api/budget/{budgetId}/post/{postId} [put]
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := pathInt(r, "postId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto PostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto.Id = postId
	post, err := h.service.UpdatePost(r.Context(), budgetId, DTOToPost(dto))
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PostToDTO(post))
}

// DeletePost godoc
// @Summary Remove a post with its item groups and loose materials
// @Tags Post
// @Param budgetId path int true "Budget ID"
// @Param postId path int true "Post ID"
// @Success 204 "No Content"
// @Failure 400 {string} string "Budget is finalized"
// @Failure 404 {string} string "Post not found"
// @Router /api/budget/{budgetId}/post/{postId} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := pathInt(r, "postId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.DeletePost(r.Context(), budgetId, postId); err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItemGroup godoc
// @Summary Attach an item group template to a post
// @Description Lines are priced from the catalog at the moment of the call.
// @Tags Post
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param postId path int true "Post ID"
// @Param group body AddItemGroupDTO true "Template"
// @Success 201 {object} ItemGroupDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Post or template not found"
// @Router /api/budget/{budgetId}/post/{postId}/itemgroup [post]
func (h *Handler) AddItemGroup(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding item group to post")
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := pathInt(r, "postId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto AddItemGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	group, err := h.service.AddItemGroup(r.Context(), budgetId, postId, dto.TemplateId)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ItemGroupToDTO(group))
}

// RemoveItemGroup godoc
// @Summary Remove an item group from a post
// @Tags Post
// @Param budgetId path int true "Budget ID"
// @Param postId path int true "Post ID"
// @Param groupId path int true "Item group ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Item group not found"
// @Router /api/budget/{budgetId}/post/{postId}/itemgroup/{groupId} [delete]
func (h *Handler) RemoveItemGroup(w http.ResponseWriter, r *http.Request) {
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := pathInt(r, "postId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	groupId, err := pathInt(r, "groupId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.RemoveItemGroup(r.Context(), budgetId, postId, groupId); err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLooseMaterial godoc
// @Summary Add a loose material to a post
// @Tags Post
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param postId path int true "Post ID"
// @Param material body AddMaterialDTO true "Material and quantity"
// @Success 201 {object} MaterialEntryDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Post not found"
// @Router /api/budget/{budgetId}/post/{postId}/material [post]
func (h *Handler) AddLooseMaterial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := pathInt(r, "postId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto AddMaterialDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := h.service.AddLooseMaterial(r.Context(), budgetId, postId, dto.MaterialId, dto.Quantity)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, LooseMaterialToDTO(entry))
}

// UpdateLooseMaterial godoc
// @Summary Change the quantity of a loose material
// @Description The price captured when the material was added is kept.
// @Tags Post
// @Accept json
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Param postId path int true "Post ID"
// @Param entryId path int true "Loose material ID"
// @Param quantity body QuantityDTO true "Quantity"
// @Success 200 {object} MaterialEntryDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "Loose material not found"
// @Router /api/budget/{budgetId}/post/{postId}/material/{entryId} [put]
func (h *Handler) UpdateLooseMaterial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := pathInt(r, "postId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entryId, err := pathInt(r, "entryId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto QuantityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := h.service.UpdateLooseMaterial(r.Context(), budgetId, postId, entryId, dto.Quantity)
	if err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LooseMaterialToDTO(entry))
}

// RemoveLooseMaterial godoc
// @Summary Remove a loose material from a post
// @Tags Post
// @Param budgetId path int true "Budget ID"
// @Param postId path int true "Post ID"
// @Param entryId path int true "Loose material ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Loose material not found"
// @Router /api/budget/{budgetId}/post/{postId}/material/{entryId} [delete]
func (h *Handler) RemoveLooseMaterial(w http.ResponseWriter, r *http.Request) {
	budgetId, err := pathInt(r, "budgetId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	postId, err := pathInt(r, "postId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entryId, err := pathInt(r, "entryId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.RemoveLooseMaterial(r.Context(), budgetId, postId, entryId); err != nil {
		apperrors.WriteHttpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func BudgetToDTO(budget Budget) BudgetDTO {
	return BudgetDTO{
		Id:         budget.Id,
		Name:       budget.Name,
		CompanyId:  budget.CompanyId,
		ClientName: budget.ClientName,
		City:       budget.City,
		Status:     string(budget.Status),
		FolderId:   budget.FolderId,
		CreatedAt:  budget.CreatedAt,
		UpdatedAt:  budget.UpdatedAt,
	}
}

func DTOToBudget(dto BudgetDTO) Budget {
	return Budget{
		Id:         dto.Id,
		Name:       dto.Name,
		CompanyId:  dto.CompanyId,
		ClientName: dto.ClientName,
		City:       dto.City,
		Status:     Status(dto.Status),
		FolderId:   dto.FolderId,
	}
}

func PostToDTO(post Post) PostDTO {
	groups := make([]ItemGroupDTO, 0, len(post.ItemGroups))
	for _, group := range post.ItemGroups {
		groups = append(groups, ItemGroupToDTO(group))
	}
	loose := make([]MaterialEntryDTO, 0, len(post.LooseMaterials))
	for _, entry := range post.LooseMaterials {
		loose = append(loose, LooseMaterialToDTO(entry))
	}
	return PostDTO{
		Id:             post.Id,
		Name:           post.Name,
		PostTypeId:     post.PostTypeId,
		X:              post.Coordinates.X,
		Y:              post.Coordinates.Y,
		ItemGroups:     groups,
		LooseMaterials: loose,
	}
}

func DTOToPost(dto PostDTO) Post {
	return Post{
		Id:          dto.Id,
		Name:        dto.Name,
		PostTypeId:  dto.PostTypeId,
		Coordinates: Coordinates{X: dto.X, Y: dto.Y},
	}
}

func ItemGroupToDTO(group ItemGroupInstance) ItemGroupDTO {
	lines := make([]MaterialEntryDTO, 0, len(group.Lines))
	for _, line := range group.Lines {
		lines = append(lines, entryDTO(line.Id, line.MaterialId, line.Quantity, line.PriceAtAddition, line.Material))
	}
	return ItemGroupDTO{
		Id:         group.Id,
		Name:       group.Name,
		TemplateId: group.TemplateId,
		Lines:      lines,
	}
}

func LooseMaterialToDTO(entry LooseMaterialEntry) MaterialEntryDTO {
	return entryDTO(entry.Id, entry.MaterialId, entry.Quantity, entry.PriceAtAddition, entry.Material)
}

func entryDTO(id, materialId int, quantity, price decimal.Decimal, material *MaterialDisplay) MaterialEntryDTO {
	dto := MaterialEntryDTO{
		Id:              id,
		MaterialId:      materialId,
		Quantity:        quantity,
		PriceAtAddition: price,
	}
	if material != nil {
		dto.Code = material.Code
		dto.Name = material.Name
		dto.Unit = material.Unit
	}
	return dto
}

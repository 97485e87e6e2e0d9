package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*mux.Router, func()) {
	teardown := setup(t)
	handler := NewHandler(service)
	r := mux.NewRouter()
	r.HandleFunc("/api/budget", handler.CreateBudget).Methods("POST")
	r.HandleFunc("/api/budget", handler.ListBudgets).Methods("GET")
	r.HandleFunc("/api/budget/{budgetId}/status", handler.SetStatus).Methods("PUT")
	r.HandleFunc("/api/budget/{budgetId}/post", handler.AddPost).Methods("POST")
	r.HandleFunc("/api/budget/{budgetId}/post", handler.ListPosts).Methods("GET")
	r.HandleFunc("/api/budget/{budgetId}/post/{postId}/material", handler.AddLooseMaterial).Methods("POST")
	return r, teardown
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateBudget(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()

	w := doRequest(r, http.MethodPost, "/api/budget", `{"name":"Rede BT","companyId":1,"city":"Campinas"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var dto BudgetDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, "in_progress", dto.Status)
	assert.Nil(t, dto.FolderId)
	assert.True(t, now.Equal(dto.CreatedAt))
}

func TestHandler_AddPostToFinalizedBudget(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()

	// given
	budget := createBudget(t, 1)
	w := doRequest(r, http.MethodPut, fmt.Sprintf("/api/budget/%d/status", budget.Id), `{"status":"finalized"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// when
	w = doRequest(r, http.MethodPost, fmt.Sprintf("/api/budget/%d/post", budget.Id), `{"name":"P1","postTypeId":1}`)

	// then
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "finalized")
}

func TestHandler_SetStatus_Invalid(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()

	budget := createBudget(t, 1)

	w := doRequest(r, http.MethodPut, fmt.Sprintf("/api/budget/%d/status", budget.Id), `{"status":"archived"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_AddLooseMaterialAndListPosts(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()

	// given
	material := createMaterial(t, "CB", "Cabo", "7.35")
	budget := createBudget(t, 1)
	post := createPost(t, budget.Id, "P1")

	// when
	body := fmt.Sprintf(`{"materialId":%d,"quantity":"2.5"}`, material.Id)
	w := doRequest(r, http.MethodPost, fmt.Sprintf("/api/budget/%d/post/%d/material", budget.Id, post.Id), body)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/budget/%d/post", budget.Id), "")

	// then
	require.Equal(t, http.StatusOK, w.Code)
	var posts []PostDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&posts))
	require.Len(t, posts, 1)
	require.Len(t, posts[0].LooseMaterials, 1)
	assert.Equal(t, "Cabo", posts[0].LooseMaterials[0].Name)
	assert.True(t, posts[0].LooseMaterials[0].PriceAtAddition.Equal(dec("7.35")))
}

func TestHandler_ListBudgets_InvalidFolder(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()

	w := doRequest(r, http.MethodGet, "/api/budget?folderId=abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

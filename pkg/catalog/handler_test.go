package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *RepositoryStub) {
	repo := NewRepositoryStub()
	handler := NewHandler(NewService(repo))
	r := mux.NewRouter()
	r.HandleFunc("/api/material", handler.ListMaterials).Methods("GET")
	r.HandleFunc("/api/material", handler.CreateMaterial).Methods("POST")
	r.HandleFunc("/api/material/{materialId}", handler.GetMaterial).Methods("GET")
	r.HandleFunc("/api/material/{materialId}", handler.UpdateMaterial).Methods("PUT")
	r.HandleFunc("/api/material/{materialId}", handler.DeleteMaterial).Methods("DELETE")
	return r, repo
}

func TestHandler_CreateMaterial(t *testing.T) {
	r, _ := setupHandlerTest(t)

	body := `{"code":"CB-16","name":"Cabo","unit":"m","unitPrice":"7.35"}`
	req := httptest.NewRequest(http.MethodPost, "/api/material", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var dto MaterialDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, 1, dto.Id)
	assert.Equal(t, "M", dto.Unit)
	assert.True(t, dto.UnitPrice.Equal(decimal.RequireFromString("7.35")))
}

func TestHandler_CreateMaterial_ValidationError(t *testing.T) {
	r, _ := setupHandlerTest(t)

	body := `{"code":"","name":"Cabo","unit":"m","unitPrice":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/material", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "material code is required")
}

func TestHandler_GetMaterial_NotFound(t *testing.T) {
	r, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/material/42", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_UpdateMaterial_MismatchedId(t *testing.T) {
	r, _ := setupHandlerTest(t)

	body := `{"id":2,"code":"CB","name":"Cabo","unit":"m","unitPrice":"1"}`
	req := httptest.NewRequest(http.MethodPut, "/api/material/1", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteMaterial(t *testing.T) {
	r, repo := setupHandlerTest(t)
	id, _ := repo.StoreMaterial(ctx, cable())

	req := httptest.NewRequest(http.MethodDelete, "/api/material/1", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 1, id)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

package folder

import (
	"bytes"
	"encoding/json"
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
	r.HandleFunc("/api/folder", handler.List).Methods("GET")
	r.HandleFunc("/api/folder", handler.Create).Methods("POST")
	r.HandleFunc("/api/folder/{folderId}", handler.Get).Methods("GET")
	r.HandleFunc("/api/folder/{folderId}", handler.Delete).Methods("DELETE")
	r.HandleFunc("/api/folder/{folderId}/parent", handler.Move).Methods("PUT")
	r.HandleFunc("/api/folder/{folderId}/path", handler.Path).Methods("GET")
	r.HandleFunc("/api/folder/{folderId}/descendant/{candidateId}", handler.IsDescendant).Methods("GET")
	r.HandleFunc("/api/budget/{budgetId}/folder", handler.MoveBudget).Methods("PUT")
	return r, teardown
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateAndList(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()

	w := doRequest(r, http.MethodPost, "/api/folder", `{"name":"Obras","color":"#ff0000"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created FolderDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, 1, created.Id)
	assert.Nil(t, created.ParentId)

	w = doRequest(r, http.MethodPost, "/api/folder", `{"name":"Campinas","parentId":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodGet, "/api/folder?root=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	var roots []FolderDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&roots))
	assert.Len(t, roots, 1)

	w = doRequest(r, http.MethodGet, "/api/folder?parentId=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var children []FolderDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&children))
	require.Len(t, children, 1)
	assert.Equal(t, "Campinas", children[0].Name)
}

func TestHandler_CreateWithBlankName(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()

	w := doRequest(r, http.MethodPost, "/api/folder", `{"name":"  "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_MoveIntoDescendant(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()
	seedTree()

	w := doRequest(r, http.MethodPut, "/api/folder/1/parent", `{"parentId":4}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "descendants")
}

func TestHandler_MoveToRoot(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()
	seedTree()

	w := doRequest(r, http.MethodPut, "/api/folder/4/parent", `{"parentId":null}`)

	require.Equal(t, http.StatusOK, w.Code)
	var result MoveResultDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.True(t, result.Changed)
	assert.Nil(t, result.Folder.ParentId)
}

func TestHandler_PathAndDescendant(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()
	seedTree()

	w := doRequest(r, http.MethodGet, "/api/folder/4/path", "")
	require.Equal(t, http.StatusOK, w.Code)
	var path []FolderDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&path))
	require.Len(t, path, 3)
	assert.Equal(t, "Obras", path[0].Name)

	w = doRequest(r, http.MethodGet, "/api/folder/1/descendant/4", "")
	require.Equal(t, http.StatusOK, w.Code)
	var result DescendantDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.True(t, result.Descendant)
}

func TestHandler_DeleteAndMoveBudget(t *testing.T) {
	r, teardown := setupRouter(t)
	defer teardown()
	seedTree()

	w := doRequest(r, http.MethodPut, "/api/budget/7/folder", `{"folderId":2}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/folder/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var result DeleteResultDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, []int{4}, result.ReparentedIds)
	assert.Nil(t, repoStub.BudgetFolder(7))

	w = doRequest(r, http.MethodGet, "/api/folder/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPut, "/api/budget/7/folder", `{"folderId":2}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

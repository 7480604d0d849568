package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/choralworks/medialib/pkg/pagination"
	"github.com/choralworks/medialib/pkg/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(store *fakeMetadata, blobs *fakeBlobs) *http.ServeMux {
	lib := NewLibrary(store, blobs, discardLogger(), 2)
	handler := NewHandler(lib, discardLogger(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, 10<<20)

	mux := http.NewServeMux()
	routes.Mount(mux, "/api", handler.Routes())
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandlerFirstPage(t *testing.T) {
	mux := newTestServer(&fakeMetadata{records: seedRecords("choir-a", 5)}, &fakeBlobs{})

	w := doRequest(t, mux, "GET", "/api/assets?scope=choir-a&page_size=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page pagination.Page[Record]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "name-1", page.Data[0].Name)
}

func TestHandlerFirstPageRequiresScope(t *testing.T) {
	mux := newTestServer(&fakeMetadata{}, &fakeBlobs{})

	w := doRequest(t, mux, "GET", "/api/assets", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerNextPageBeforeFirstPage(t *testing.T) {
	mux := newTestServer(&fakeMetadata{records: seedRecords("choir-a", 3)}, &fakeBlobs{})

	w := doRequest(t, mux, "GET", "/api/assets/next?scope=choir-a", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerSearch(t *testing.T) {
	mux := newTestServer(&fakeMetadata{records: seedRecords("choir-a", 3)}, &fakeBlobs{})

	body := bytes.NewBufferString(`{"scope":"choir-a","keyword":"name-2"}`)
	w := doRequest(t, mux, "POST", "/api/assets/search", body, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Keyword    string   `json:"keyword"`
		New        []Record `json:"new"`
		Superseded bool     `json:"superseded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "name-2", resp.Keyword)
	assert.Len(t, resp.New, 1)
	assert.False(t, resp.Superseded)
}

func TestHandlerSearchSupersededReportsNoResults(t *testing.T) {
	store := &fakeMetadata{records: seedRecords("choir-a", 3)}
	lib := NewLibrary(store, &fakeBlobs{}, discardLogger(), 2)
	handler := NewHandler(lib, discardLogger(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, 10<<20)

	mux := http.NewServeMux()
	routes.Mount(mux, "/api", handler.Routes())

	// clearing the scope mid-search invalidates the in-flight generation
	store.onSearch = func() {
		store.onSearch = nil
		lib.ClearSearch("choir-a")
	}

	body := bytes.NewBufferString(`{"scope":"choir-a","keyword":"name"}`)
	w := doRequest(t, mux, "POST", "/api/assets/search", body, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Keyword    string   `json:"keyword"`
		New        []Record `json:"new"`
		Superseded bool     `json:"superseded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Superseded)
	assert.Empty(t, resp.New)
}

func TestHandlerSearchRejectsShortKeyword(t *testing.T) {
	store := &fakeMetadata{records: seedRecords("choir-a", 3)}
	mux := newTestServer(store, &fakeBlobs{})

	body := bytes.NewBufferString(`{"scope":"choir-a","keyword":"x"}`)
	w := doRequest(t, mux, "POST", "/api/assets/search", body, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.callLog())
}

func TestHandlerClearSearch(t *testing.T) {
	mux := newTestServer(&fakeMetadata{records: seedRecords("choir-a", 3)}, &fakeBlobs{})

	body := bytes.NewBufferString(`{"scope":"choir-a","keyword":"name"}`)
	w := doRequest(t, mux, "POST", "/api/assets/search", body, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, mux, "DELETE", "/api/assets/search?scope=choir-a", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, mux, "GET", "/api/assets/view?scope=choir-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Local []Record `json:"local"`
		Deep  []Record `json:"deep"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Deep)
}

func multipartUpload(t *testing.T, scope string, names ...string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("scope", scope))
	for _, name := range names {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandlerUpload(t *testing.T) {
	mux := newTestServer(&fakeMetadata{}, &fakeBlobs{})

	body, contentType := multipartUpload(t, "choir-a", "a.txt", "b.txt")
	w := doRequest(t, mux, "POST", "/api/assets", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code)

	var result BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, BatchSucceeded, result.Outcome)
	assert.Equal(t, 2, result.Succeeded)
}

func TestHandlerUploadPartialIsMultiStatus(t *testing.T) {
	blobs := &fakeBlobs{failOn: map[string]bool{"b.txt": true}}
	mux := newTestServer(&fakeMetadata{}, blobs)

	body, contentType := multipartUpload(t, "choir-a", "a.txt", "b.txt")
	w := doRequest(t, mux, "POST", "/api/assets", body, contentType)

	require.Equal(t, http.StatusMultiStatus, w.Code)
	var result BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, BatchPartial, result.Outcome)
}

func TestHandlerUploadRequiresScope(t *testing.T) {
	mux := newTestServer(&fakeMetadata{}, &fakeBlobs{})

	body, contentType := multipartUpload(t, "", "a.txt")
	w := doRequest(t, mux, "POST", "/api/assets", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerDelete(t *testing.T) {
	records := seedRecords("choir-a", 1)
	mux := newTestServer(&fakeMetadata{records: records}, &fakeBlobs{})

	target := fmt.Sprintf("/api/assets/%s?scope=choir-a", records[0].ID)
	w := doRequest(t, mux, "DELETE", target, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Outcome DeleteOutcome `json:"outcome"`
		Warning string        `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, DeleteCompleted, resp.Outcome)
	assert.Empty(t, resp.Warning)
}

func TestHandlerDeleteOrphanedBlobWarns(t *testing.T) {
	records := seedRecords("choir-a", 1)
	blobs := &fakeBlobs{deleteErr: fmt.Errorf("permission denied")}
	mux := newTestServer(&fakeMetadata{records: records}, blobs)

	target := fmt.Sprintf("/api/assets/%s?scope=choir-a", records[0].ID)
	w := doRequest(t, mux, "DELETE", target, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Outcome DeleteOutcome `json:"outcome"`
		Warning string        `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, DeleteOrphanedBlob, resp.Outcome)
	assert.NotEmpty(t, resp.Warning)
}

func TestHandlerDeleteUnknownID(t *testing.T) {
	mux := newTestServer(&fakeMetadata{}, &fakeBlobs{})

	w := doRequest(t, mux, "DELETE", "/api/assets/9f3a1c92-0000-0000-0000-000000000000?scope=choir-a", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, mux, "DELETE", "/api/assets/not-a-uuid?scope=choir-a", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerFind(t *testing.T) {
	records := seedRecords("choir-a", 1)
	mux := newTestServer(&fakeMetadata{records: records}, &fakeBlobs{})

	w := doRequest(t, mux, "GET", fmt.Sprintf("/api/assets/%s?scope=choir-a", records[0].ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var rec Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, records[0].ID, rec.ID)
	assert.True(t, strings.HasPrefix(rec.Name, "name-"))
}

package assets

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/choralworks/medialib/pkg/handlers"
	"github.com/choralworks/medialib/pkg/pagination"
	"github.com/choralworks/medialib/pkg/routes"
	"github.com/google/uuid"
)

// Handler provides HTTP endpoints for the asset library.
type Handler struct {
	lib           *Library
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates an asset handler with the specified configuration.
func NewHandler(lib *Library, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		lib:           lib,
		logger:        logger.With("handler", "assets"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the asset endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/assets",
		Description: "Media asset upload, listing, and search",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.FirstPage},
			{Method: "GET", Pattern: "/next", Handler: h.NextPage},
			{Method: "GET", Pattern: "/view", Handler: h.View},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "DELETE", Pattern: "/search", Handler: h.ClearSearch},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

func (h *Handler) FirstPage(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, h.logger, r.URL.Query())
	if !ok {
		return
	}

	page, err := h.lib.FirstPage(
		r.Context(),
		scope,
		typeFilterFromQuery(r.URL.Query()),
		pagination.PageSizeFromQuery(r.URL.Query(), h.pagination),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, page)
}

func (h *Handler) NextPage(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, h.logger, r.URL.Query())
	if !ok {
		return
	}

	page, err := h.lib.NextPage(
		r.Context(),
		scope,
		typeFilterFromQuery(r.URL.Query()),
		pagination.PageSizeFromQuery(r.URL.Query(), h.pagination),
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, page)
}

// View returns the locally materialized records matching the type filter
// and keyword, together with the current deep results. No remote calls.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, h.logger, r.URL.Query())
	if !ok {
		return
	}

	local := h.lib.FilterLocal(scope, typeFilterFromQuery(r.URL.Query()), r.URL.Query().Get("keyword"))
	if local == nil {
		local = []Record{}
	}
	deep := h.lib.DeepResults(scope)

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"local": local,
		"deep":  deep,
	})
}

type searchRequest struct {
	Scope   string `json:"scope"`
	Keyword string `json:"keyword"`
}

type searchResponse struct {
	Keyword    string   `json:"keyword"`
	New        []Record `json:"new"`
	Superseded bool     `json:"superseded"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if req.Scope == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidArgument)
		return
	}

	results, err := h.lib.DeepSearch(r.Context(), req.Scope, req.Keyword)
	if errors.Is(err, ErrSuperseded) {
		handlers.RespondJSON(w, http.StatusOK, searchResponse{Keyword: req.Keyword, New: []Record{}, Superseded: true})
		return
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if results == nil {
		results = []Record{}
	}

	handlers.RespondJSON(w, http.StatusOK, searchResponse{Keyword: req.Keyword, New: results})
}

func (h *Handler) ClearSearch(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, h.logger, r.URL.Query())
	if !ok {
		return
	}

	h.lib.ClearSearch(scope)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	scope := r.FormValue("scope")
	if scope == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidArgument)
		return
	}
	folder := r.FormValue("folder")

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	var files []FileUpload
	for _, header := range headers {
		if header.Size > h.maxUploadSize {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}

		file, err := header.Open()
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
			return
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
			return
		}

		files = append(files, FileUpload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Folder:      folder,
			Data:        data,
		})
	}

	result := h.lib.Upload(r.Context(), scope, files, nil)

	status := http.StatusCreated
	switch result.Outcome {
	case BatchPartial:
		status = http.StatusMultiStatus
	case BatchFailed:
		status = http.StatusBadGateway
	}

	handlers.RespondJSON(w, status, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, h.logger, r.URL.Query())
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.lib.Find(r.Context(), scope, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

type deleteResponse struct {
	Outcome DeleteOutcome `json:"outcome"`
	Warning string        `json:"warning,omitempty"`
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, h.logger, r.URL.Query())
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	outcome, err := h.lib.Delete(r.Context(), scope, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	resp := deleteResponse{Outcome: outcome}
	if outcome == DeleteOrphanedBlob {
		resp.Warning = "asset removed, but its binary could not be reclaimed"
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func typeFilterFromQuery(values url.Values) *Type {
	if v := values.Get("type"); v != "" {
		t := Type(v)
		if t.Valid() {
			return &t
		}
	}
	return nil
}

func requireScope(w http.ResponseWriter, logger *slog.Logger, values url.Values) (string, bool) {
	scope := values.Get("scope")
	if scope == "" {
		handlers.RespondError(w, logger, http.StatusBadRequest, ErrInvalidArgument)
		return "", false
	}
	return scope, true
}

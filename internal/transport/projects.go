package transport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/dynaflex/basing/internal/fstree"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// ProjectService defines the project operations served over HTTP.
type ProjectService interface {
	Create(ctx context.Context, cfg project.Config) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, offset, limit int) ([]project.Summary, error)
	Update(ctx context.Context, id string, cfg project.Config) (*project.Project, error)
	Delete(ctx context.Context, id string) error
}

// flexFloat accepts a JSON number or a numeric string. It never fails to
// decode so that bad values surface as validation errors, not parse errors.
type flexFloat struct {
	Value float64
	Set   bool
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Set = false
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err == nil {
		f.Valid = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	f.Value, f.Valid = v, true
	return nil
}

type projectRequest struct {
	Name                string    `json:"project_name"`
	SourceFolder        string    `json:"source_folder"`
	DestinationFolder   string    `json:"destination_folder"`
	PalateConfiguration string    `json:"palate_configuration"`
	BaseHeight          flexFloat `json:"base_height"`
}

// decodeProject reads the body into a project config. Malformed JSON is a
// 400; missing or mistyped fields are a 422.
func decodeProject(w http.ResponseWriter, r *http.Request) (project.Config, bool) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid value for %s", typeErr.Field))
			return project.Config{}, false
		}
		WriteError(w, http.StatusBadRequest, "malformed JSON body")
		return project.Config{}, false
	}

	if !req.BaseHeight.Set {
		WriteError(w, http.StatusUnprocessableEntity, "base_height is required")
		return project.Config{}, false
	}
	if !req.BaseHeight.Valid {
		WriteError(w, http.StatusUnprocessableEntity, "base_height must be a number")
		return project.Config{}, false
	}

	return project.Config{
		Name:                req.Name,
		SourceFolder:        req.SourceFolder,
		DestinationFolder:   req.DestinationFolder,
		PalateConfiguration: req.PalateConfiguration,
		BaseHeight:          req.BaseHeight.Value,
	}, true
}

type projectHandler struct {
	projects ProjectService
}

func (h *projectHandler) routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/tree", h.tree)
}

func (h *projectHandler) create(w http.ResponseWriter, r *http.Request) {
	cfg, ok := decodeProject(w, r)
	if !ok {
		return
	}

	proj, err := h.projects.Create(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, r, "", err)
		return
	}
	WriteData(w, http.StatusCreated, fmt.Sprintf("Project created successfully with ID %s", proj.ID), proj)
}

func (h *projectHandler) list(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", project.DefaultListLimit)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	summaries, err := h.projects.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, "", err)
		return
	}
	WriteData(w, http.StatusOK, "Project list retrieved successfully", summaries)
}

func (h *projectHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	proj, err := h.projects.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, id, err)
		return
	}
	WriteData(w, http.StatusOK, fmt.Sprintf("Retrieved info of project having ID %s", id), proj)
}

func (h *projectHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := project.ValidateID(id); err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	cfg, ok := decodeProject(w, r)
	if !ok {
		return
	}

	proj, err := h.projects.Update(r.Context(), id, cfg)
	if err != nil {
		writeServiceError(w, r, id, err)
		return
	}
	WriteData(w, http.StatusOK, fmt.Sprintf("Updated info of project having ID %s", id), proj)
}

func (h *projectHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.projects.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, id, err)
		return
	}
	WriteData(w, http.StatusOK, fmt.Sprintf("Deleted project having ID %s", id), "")
}

func (h *projectHandler) tree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	proj, err := h.projects.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, id, err)
		return
	}

	var dir string
	switch folder := r.URL.Query().Get("folder"); folder {
	case "", "source":
		dir = proj.SourceFolder
	case "destination":
		dir = proj.DestinationFolder
	default:
		WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown folder %q", folder))
		return
	}

	nodes, err := fstree.GenerateDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		WriteError(w, http.StatusNotFound, fmt.Sprintf("folder %s not found", dir))
		return
	case errors.Is(err, fstree.ErrNotDirectory):
		WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s is not a folder", dir))
		return
	case err != nil:
		LoggerFromContext(r.Context()).Error("failed to list folder", "project_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to list folder")
		return
	}
	WriteData(w, http.StatusOK, fmt.Sprintf("Retrieved folder tree of project having ID %s", id), nodes)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

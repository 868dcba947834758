package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dynaflex/basing/internal/domain/project"
	"github.com/goccy/go-json"
)

// Envelope wraps every project response.
type Envelope struct {
	Response string `json:"Response"`
	Data     any    `json:"Data"`
}

// WriteData writes a success envelope.
func WriteData(w http.ResponseWriter, status int, message string, data any) {
	if data == nil {
		data = ""
	}
	writeJSON(w, status, Envelope{Response: message, Data: data})
}

// WriteError writes a failure envelope with an empty Data field.
func WriteError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, Envelope{
		Response: "Encountered Exception : " + detail,
		Data:     "",
	})
}

// writeServiceError maps a project service error onto a status code.
func writeServiceError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Project having id %s not found", id))
	case errors.Is(err, project.ErrInvalidInput):
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, project.ErrProjectConflict):
		WriteError(w, http.StatusConflict, "project name, source folder and destination folder must be unique among active projects")
	default:
		LoggerFromContext(r.Context()).Error("project request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "store unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

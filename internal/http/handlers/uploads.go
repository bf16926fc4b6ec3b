package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"fitroom/internal/storage"
	"fitroom/internal/upload"
)

type prepareUploadsRequest struct {
	OwnerID string            `json:"owner_id"`
	Files   []upload.FileMeta `json:"files"`
}

type uploadAssignment struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Path     string `json:"path"`
}

// PrepareUploads validates a candidate file set and, when admissible, assigns
// each file a storage key under the caller's namespace. No bytes move here;
// the client uploads against the returned paths afterwards.
func (a *App) PrepareUploads(w http.ResponseWriter, r *http.Request) {
	id := a.currentIdentity(w, r)
	if id == nil {
		return
	}

	var req prepareUploadsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}
	// A foreign owner id names a namespace this caller cannot see, so it is
	// indistinguishable from one that does not exist.
	if req.OwnerID != "" && req.OwnerID != id.ID {
		a.error(w, http.StatusNotFound, "unknown_owner", nil)
		return
	}

	res := upload.Validate(req.Files)
	if !res.OK() {
		a.error(w, http.StatusBadRequest, "invalid_input", res.Errors)
		return
	}

	assignments := make([]uploadAssignment, 0, len(req.Files))
	for _, f := range req.Files {
		ext, _ := upload.ExtensionFor(f.MIME)
		assignments = append(assignments, uploadAssignment{
			Name:     f.Name,
			Category: f.Category,
			Path:     id.ID + "/" + uuid.NewString() + ext,
		})
	}

	a.json(w, http.StatusOK, map[string]any{
		"success":     true,
		"bucket":      storage.BucketUploads,
		"assignments": assignments,
		"warnings":    res.Warnings,
	})
}

package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/chargedocs/chargedocs/internal/core/ports"
	"github.com/chargedocs/chargedocs/internal/core/usecase"
)

// Uploaded scans are phone photos of charge forms; 20MB leaves headroom.
const maxUploadBytes = 20 << 20

func (rt *Router) uploadSelectFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read uploaded file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := rt.uploads.SelectFile(fileHeader.Filename, contentType, data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.uploads.Status())
}

func (rt *Router) uploadApplyCrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var region ports.CropRegion
	if err := json.NewDecoder(r.Body).Decode(&region); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := rt.uploads.ApplyCrop(region); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.uploads.Status())
}

func (rt *Router) uploadCancelCrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.uploads.CancelCrop(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.uploads.Status())
}

func (rt *Router) uploadRecrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.uploads.Recrop(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.uploads.Status())
}

func (rt *Router) uploadSetMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var meta usecase.UploadMetadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := rt.uploads.SetMetadata(meta); err != nil {
		writeError(w, err)
		return
	}
	status := rt.uploads.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"can_submit": rt.uploads.CanSubmit(),
	})
}

func (rt *Router) uploadSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	doc, err := rt.uploads.Submit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) uploadStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	status := rt.uploads.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"can_submit": rt.uploads.CanSubmit(),
	})
}

func (rt *Router) uploadReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.uploads.Reset(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.uploads.Status())
}

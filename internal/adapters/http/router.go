package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/chargedocs/chargedocs/internal/core/ports"
	"github.com/chargedocs/chargedocs/internal/core/usecase"
)

// Router exposes the client-state layer to the views. Views read and
// dispatch through this surface only; the cached list itself is never
// handed out for mutation.
type Router struct {
	browser  ports.DocumentBrowser
	viewer   ports.DocumentViewer
	uploads  *usecase.UploadWorkflow
	exporter ports.DataExporter
	auth     *usecase.AuthUseCase
	session  ports.SessionStore
}

func NewRouter(
	browser ports.DocumentBrowser,
	viewer ports.DocumentViewer,
	uploads *usecase.UploadWorkflow,
	exporter ports.DataExporter,
	auth *usecase.AuthUseCase,
	session ports.SessionStore,
) *Router {
	return &Router{
		browser:  browser,
		viewer:   viewer,
		uploads:  uploads,
		exporter: exporter,
		auth:     auth,
		session:  session,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)

	mux.HandleFunc("/v1/session", rt.handleSession)

	mux.HandleFunc("/v1/documents", rt.listDocuments)
	mux.HandleFunc("/v1/documents/grouped", rt.groupedDocuments)
	mux.HandleFunc("/v1/documents/search", rt.searchDocuments)
	mux.HandleFunc("/v1/documents/refresh", rt.refreshDocuments)
	mux.HandleFunc("/v1/documents/", rt.documentByName)

	mux.HandleFunc("/v1/upload/file", rt.uploadSelectFile)
	mux.HandleFunc("/v1/upload/crop", rt.uploadApplyCrop)
	mux.HandleFunc("/v1/upload/crop/cancel", rt.uploadCancelCrop)
	mux.HandleFunc("/v1/upload/recrop", rt.uploadRecrop)
	mux.HandleFunc("/v1/upload/metadata", rt.uploadSetMetadata)
	mux.HandleFunc("/v1/upload/submit", rt.uploadSubmit)
	mux.HandleFunc("/v1/upload/status", rt.uploadStatus)
	mux.HandleFunc("/v1/upload/reset", rt.uploadReset)

	mux.HandleFunc("/v1/export", rt.exportData)

	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

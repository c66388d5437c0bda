package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": rt.browser.Documents(),
		"status":    rt.browser.Status(),
	})
}

func (rt *Router) groupedDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": rt.browser.Grouped(),
		"status": rt.browser.Status(),
	})
}

func (rt *Router) searchDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rt.browser.SetSearchQuery(r.Context(), strings.TrimSpace(req.Query))
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": rt.browser.Documents(),
		"status":    rt.browser.Status(),
	})
}

func (rt *Router) refreshDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.browser.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": rt.browser.Documents(),
		"status":    rt.browser.Status(),
	})
}

// documentByName dispatches the /v1/documents/{image_name} subtree:
// GET detail, DELETE, and PUT {image_name}/stickers/{gtin}.
func (rt *Router) documentByName(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document name is required"})
		return
	}

	segments := strings.Split(rest, "/")
	name, err := url.PathUnescape(segments[0])
	if err != nil || name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid document name"})
		return
	}

	switch {
	case len(segments) == 1 && r.Method == http.MethodGet:
		rt.documentStickers(w, r, name)
	case len(segments) == 1 && r.Method == http.MethodDelete:
		rt.deleteDocument(w, r, name)
	case len(segments) == 3 && segments[1] == "stickers" && r.Method == http.MethodPut:
		gtin, err := url.PathUnescape(segments[2])
		if err != nil || gtin == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid gtin"})
			return
		}
		rt.updateStickerQuantity(w, r, name, gtin)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) documentStickers(w http.ResponseWriter, r *http.Request, name string) {
	stickers, err := rt.viewer.Stickers(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stickers": stickers})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request, name string) {
	if err := rt.browser.Delete(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": rt.browser.Documents(),
		"status":    rt.browser.Status(),
	})
}

func (rt *Router) updateStickerQuantity(w http.ResponseWriter, r *http.Request, name, gtin string) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	sticker, err := rt.viewer.UpdateQuantity(r.Context(), name, gtin, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sticker)
}

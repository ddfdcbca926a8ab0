package submission

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
)

// Handler exposes the item submission endpoints.
type Handler struct {
	service Service
	respond *apperr.Responder
}

func NewHandler(service Service, respond *apperr.Responder) *Handler {
	return &Handler{service: service, respond: respond}
}

// RegisterRoutes mounts the submission routes on r, which is already scoped to the API version.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/{storeID}/postitem", h.postItem)
	r.Delete("/stores/{storeID}/items/{itemCode}", h.deleteItem)
}

func (h *Handler) postItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.respond.Error(w, r, "", apperr.MethodNotAllowed(r.Method))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respond.Error(w, r, "", apperr.Validation("", "Request body too large"))
			return
		}
		h.respond.Error(w, r, "", apperr.Validation("", "Failed to read request body"))
		return
	}

	sub, err := ParsePostItem(body)
	if err != nil {
		h.respond.Error(w, r, "", err)
		return
	}

	resp, err := h.service.PostItem(r.Context(), chi.URLParam(r, "storeID"), sub)
	if err != nil {
		h.respond.Error(w, r, sub.Payload.RequestID, err)
		return
	}
	h.respond.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	itemID := chi.URLParam(r, "itemCode")
	if err := h.service.RemoveItem(r.Context(), storeID, itemID); err != nil {
		h.respond.Error(w, r, "", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package store

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/logger"
	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
)

// Handler exposes store catalog HTTP endpoints.
type Handler struct {
	service Service
	respond *apperr.Responder
}

func NewHandler(service Service, respond *apperr.Responder) *Handler {
	return &Handler{service: service, respond: respond}
}

// RegisterRoutes mounts the catalog routes on r, which is already scoped to the API version.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/stores/create", h.createStore)
	r.Get("/stores/all", h.listStores)
	r.Get("/stores/{storeID}", h.getStore)
	r.Get("/stores/{storeID}/items", h.listItems)
	r.Get("/stores/{storeID}/items/{itemCode}", h.getItem)
}

// CreateStoreResponse is returned by POST /stores/create.
type CreateStoreResponse struct {
	RequestID   string `json:"requestId"`
	StoreID     string `json:"storeId"`
	Description string `json:"Description"`
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Error(w, r, "", apperr.Validation("", "Invalid JSON payload: "+err.Error()))
		return
	}
	store, err := h.service.CreateStore(r.Context(), req)
	if err != nil {
		h.respond.Error(w, r, "", err)
		return
	}
	h.respond.JSON(w, http.StatusCreated, CreateStoreResponse{
		RequestID:   logger.GetRequestID(r.Context()),
		StoreID:     store.ID.String(),
		Description: "Store created successfully",
	})
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.ListStores(r.Context())
	if err != nil {
		h.respond.Error(w, r, "", err)
		return
	}
	h.respond.JSON(w, http.StatusOK, stores)
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.service.GetStore(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		h.respond.Error(w, r, "", err)
		return
	}
	h.respond.JSON(w, http.StatusOK, store)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		h.respond.Error(w, r, "", err)
		return
	}
	h.respond.JSON(w, http.StatusOK, items)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	store, err := h.service.GetStore(r.Context(), storeID)
	if err != nil {
		h.respond.Error(w, r, "", err)
		return
	}
	itemID := chi.URLParam(r, "itemCode")
	it, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		h.respond.Error(w, r, "", err)
		return
	}
	if it.StoreID != store.ID {
		h.respond.Error(w, r, "", apperr.NotFound("Item with ID %s not found in store %s", itemID, storeID))
		return
	}
	h.respond.JSON(w, http.StatusOK, it)
}

package http

import (
	"net/http"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/catalogview"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	views *catalogview.Registry
}

func NewCatalogHandler(views *catalogview.Registry) *CatalogHandler {
	return &CatalogHandler{views: views}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps := h.views.Snapshots()
	out := make([]CategoryResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, toCategory(s))
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "category")
	v, ok := h.views.View(name)
	if !ok {
		respondError(w, r, http.StatusNotFound, "unknown_category", "no such category", name)
		return
	}
	respondJSON(w, r, http.StatusOK, toCategory(v.Snapshot()))
}

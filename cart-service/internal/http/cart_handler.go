package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/ledger"
	"github.com/RajDalvi08/CamousKart/pkg/money"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxRequestBodySize = 1 << 20

type CartHandler struct {
	sessions *ledger.Sessions
	validate *validator.Validate
	timeout  time.Duration
}

func NewCartHandler(sessions *ledger.Sessions, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		validate: validator.New(),
		timeout:  timeout,
	}
}

// ProductDTO is a product as the storefront pages hold it. Either "_id" or
// "id" identifies it; price may be a number or a numeric string.
type ProductDTO struct {
	MongoID  string          `json:"_id"`
	ID       string          `json:"id"`
	Title    string          `json:"title" validate:"required"`
	Category string          `json:"category"`
	Price    json.RawMessage `json:"price"`
	Image    string          `json:"image"`
	Images   []string        `json:"images"`
}

func (p ProductDTO) toDomain() (domain.Product, error) {
	id := p.MongoID
	if id == "" {
		id = p.ID
	}
	price, ok := money.Coerce(p.Price)
	if !ok || price.IsNegative() {
		return domain.Product{}, apperr.New(apperr.Validation, "Price must be a non-negative number")
	}
	imgs := p.Images
	if len(imgs) == 0 && p.Image != "" {
		imgs = []string{p.Image}
	}
	return domain.Product{
		ID:       id,
		Title:    p.Title,
		Category: p.Category,
		Price:    price,
		Images:   imgs,
	}, nil
}

type AddItemRequestDTO struct {
	Product  ProductDTO `json:"product"`
	Quantity int        `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type ToggleFavoriteRequestDTO struct {
	Product ProductDTO `json:"product"`
}

type ToggleFavoriteResponse struct {
	Favorite  bool               `json:"favorite"`
	Favorites []FavoriteResponse `json:"favorites"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	l, err := h.sessions.Cart(ctx, sessionFrom(ctx))
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	h.respondCart(w, r, http.StatusOK, l)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req AddItemRequestDTO
	if !decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, "validation_error", "quantity must be between 1 and 99 and the product needs a title", err.Error())
		return
	}
	p, err := req.Product.toDomain()
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	l, err := h.sessions.Cart(ctx, sessionFrom(ctx))
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	if err := l.AddItem(ctx, p, req.Quantity); err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	h.respondCart(w, r, http.StatusCreated, l)
}

func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	l, err := h.sessions.Cart(ctx, sessionFrom(ctx))
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	if err := l.RemoveOneUnit(ctx, chi.URLParam(r, "id")); err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	h.respondCart(w, r, http.StatusOK, l)
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	l, err := h.sessions.Cart(ctx, sessionFrom(ctx))
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	if err := l.RemoveLine(ctx, chi.URLParam(r, "key")); err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	h.respondCart(w, r, http.StatusOK, l)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	l, err := h.sessions.Cart(ctx, sessionFrom(ctx))
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	if err := l.Clear(ctx); err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	h.respondCart(w, r, http.StatusOK, l)
}

func (h *CartHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	favs, err := h.sessions.Favorites(ctx, sessionFrom(ctx))
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	respondJSON(w, r, http.StatusOK, toFavorites(favs.List()))
}

func (h *CartHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req ToggleFavoriteRequestDTO
	if !decode(w, r, &req) {
		return
	}
	p, err := req.Product.toDomain()
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}

	favs, err := h.sessions.Favorites(ctx, sessionFrom(ctx))
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	on, err := favs.Toggle(ctx, p)
	if err != nil {
		respondAppError(w, r, err, nil)
		return
	}
	respondJSON(w, r, http.StatusOK, ToggleFavoriteResponse{
		Favorite:  on,
		Favorites: toFavorites(favs.List()),
	})
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int, l *ledger.Ledger) {
	respondJSON(w, r, status, CartResponse{
		Items:   toCartLines(l.Lines()),
		Total:   number(l.Total()),
		Count:   l.Count(),
		Message: h.sessions.Flash(l.Session()),
	})
}

func (h *CartHandler) context(r *http.Request) (context.Context, context.CancelFunc) {
	return contextWithTimeout(r, h.timeout)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := dec.Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body", err.Error())
		return false
	}
	return true
}

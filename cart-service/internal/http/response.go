package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/catalogview"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/checkout"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type CartLineResponse struct {
	Key       string      `json:"key"`
	ProductID string      `json:"id,omitempty"`
	Title     string      `json:"title"`
	Price     json.Number `json:"price"`
	Image     string      `json:"image"`
	Quantity  int         `json:"quantity"`
	Subtotal  json.Number `json:"subtotal"`
}

type CartResponse struct {
	Items   []CartLineResponse `json:"items"`
	Total   json.Number        `json:"total"`
	Count   int                `json:"count"`
	Message string             `json:"message,omitempty"`
}

type FavoriteResponse struct {
	ProductID string      `json:"id"`
	Title     string      `json:"title"`
	Price     json.Number `json:"price"`
	Image     string      `json:"image"`
}

type ProductResponse struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Condition   string      `json:"condition"`
	Location    string      `json:"location"`
	ContactInfo string      `json:"contactInfo,omitempty"`
	Images      []string    `json:"images"`
}

type CategoryResponse struct {
	Category  string            `json:"category"`
	Label     string            `json:"label"`
	State     string            `json:"state"`
	New       []ProductResponse `json:"new"`
	Used      []ProductResponse `json:"used"`
	Error     string            `json:"error,omitempty"`
	FetchedAt *time.Time        `json:"fetchedAt,omitempty"`
}

type CheckoutResponse struct {
	State         string                  `json:"state"`
	Items         []CartLineResponse      `json:"items"`
	Total         json.Number             `json:"total"`
	Shipping      checkout.ShippingInfo   `json:"shipping"`
	PaymentMethod string                  `json:"paymentMethod"`
	Message       string                  `json:"message,omitempty"`
	Order         *checkout.GatewayOrder  `json:"order,omitempty"`
	Widget        *checkout.WidgetOptions `json:"widget,omitempty"`
	RedirectAt    *time.Time              `json:"redirectAt,omitempty"`
	RedirectTo    string                  `json:"redirectTo,omitempty"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toCartLines(lines []domain.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, CartLineResponse{
			Key:       l.Key(),
			ProductID: l.ProductID,
			Title:     l.Title,
			Price:     number(l.Price),
			Image:     l.Image,
			Quantity:  l.Quantity,
			Subtotal:  number(l.Subtotal()),
		})
	}
	return out
}

func toFavorites(favs []domain.Favorite) []FavoriteResponse {
	out := make([]FavoriteResponse, 0, len(favs))
	for _, f := range favs {
		out = append(out, FavoriteResponse{
			ProductID: f.ProductID,
			Title:     f.Title,
			Price:     number(f.Price),
			Image:     f.Image,
		})
	}
	return out
}

func toProducts(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		imgs := p.Images
		if imgs == nil {
			imgs = []string{}
		}
		out = append(out, ProductResponse{
			ID:          p.ID,
			Title:       p.Title,
			Category:    p.Category,
			Description: p.Description,
			Price:       number(p.Price),
			Condition:   p.Condition,
			Location:    p.Location,
			ContactInfo: p.ContactInfo,
			Images:      imgs,
		})
	}
	return out
}

func toCategory(s catalogview.Snapshot) CategoryResponse {
	resp := CategoryResponse{
		Category: s.Category,
		Label:    s.DisplayLabel,
		State:    string(s.State),
		New:      toProducts(s.Listing.New),
		Used:     toProducts(s.Listing.Used),
		Error:    s.Error,
	}
	if !s.FetchedAt.IsZero() {
		t := s.FetchedAt
		resp.FetchedAt = &t
	}
	return resp
}

func toCheckout(v checkout.View) CheckoutResponse {
	resp := CheckoutResponse{
		State:         string(v.State),
		Items:         toCartLines(v.Items),
		Total:         number(v.Total),
		Shipping:      v.Shipping,
		PaymentMethod: string(v.Method),
		Message:       v.Message,
		Order:         v.Order,
		Widget:        v.Widget,
		RedirectTo:    v.RedirectTo,
	}
	if !v.RedirectAt.IsZero() {
		t := v.RedirectAt
		resp.RedirectAt = &t
	}
	return resp
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	respondJSON(w, r, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// respondAppError maps a classified error to its status. details is sent
// along, for example the checkout view the error left behind.
func respondAppError(w http.ResponseWriter, r *http.Request, err error, details any) {
	kind, _ := apperr.KindOf(err)
	status, code := http.StatusInternalServerError, "internal_error"
	switch kind {
	case apperr.Validation:
		status, code = http.StatusBadRequest, "validation_error"
	case apperr.Conflict:
		status, code = http.StatusConflict, "conflict"
	case apperr.NetworkFailure:
		status, code = http.StatusServiceUnavailable, "network_failure"
	case apperr.ServerRejection:
		status, code = http.StatusBadGateway, "server_rejection"
	case apperr.PaymentFailure:
		status, code = http.StatusPaymentRequired, "payment_failure"
	}
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
	}
	respondError(w, r, status, code, apperr.MessageOf(err, "Something went wrong. Please try again."), details)
}

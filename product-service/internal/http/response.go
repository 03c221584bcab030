package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/RajDalvi08/CamousKart/product-service/internal/domain"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ProductResponse is the wire shape of a listing. The identifier keeps the
// "_id" name the storefront has always read.
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
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	imgs := p.Images
	if imgs == nil {
		imgs = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		Condition:   string(p.Condition),
		Location:    p.Location,
		ContactInfo: p.ContactInfo,
		Images:      imgs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductsResponse(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
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

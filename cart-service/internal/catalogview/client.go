// Package catalogview keeps one live, partitioned listing per catalog
// category, refetched whenever the catalog signals a change.
package catalogview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/RajDalvi08/CamousKart/pkg/circuitbreaker"
	"github.com/RajDalvi08/CamousKart/pkg/money"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseSize = 8 << 20

// statusError is a non-2xx answer from the catalog.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog responded %d", e.status)
}

// Client reads listings from the catalog service.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.Breaker[[]domain.Product]
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[[]domain.Product]("catalog", 30*time.Second, log, isClientRejection),
		log:     log,
	}
}

// FetchCategory GETs fetchPath (for example /api/products/category/Books).
// Failures are NetworkFailure when the catalog could not be reached and
// ServerRejection when it answered with an error; the latter carries the
// server's message when it sent one.
func (c *Client) FetchCategory(ctx context.Context, fetchPath string) ([]domain.Product, error) {
	products, err := c.breaker.Execute(func() ([]domain.Product, error) {
		return c.fetch(ctx, fetchPath)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, apperr.Wrap(apperr.NetworkFailure, "", err)
	}
	return products, err
}

func (c *Client) fetch(ctx context.Context, fetchPath string) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fetchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.NetworkFailure, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, apperr.Wrap(apperr.NetworkFailure, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Wrap(apperr.ServerRejection, serverMessage(body), &statusError{status: resp.StatusCode})
	}

	var raw []wireProduct
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.Wrap(apperr.ServerRejection, "", fmt.Errorf("failed to decode catalog response: %w", err))
	}

	products := make([]domain.Product, 0, len(raw))
	for _, w := range raw {
		p := w.toDomain()
		for i, img := range p.Images {
			p.Images[i] = c.ResolveImage(img)
		}
		products = append(products, p)
	}
	return products, nil
}

// ResolveImage turns a stored image path into an absolute URL on the catalog host.
func (c *Client) ResolveImage(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.baseURL + "/" + strings.TrimLeft(strings.ReplaceAll(ref, "\\", "/"), "/")
}

type wireProduct struct {
	MongoID     string          `json:"_id"`
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Condition   string          `json:"condition"`
	Location    string          `json:"location"`
	ContactInfo string          `json:"contactInfo"`
	Images      []string        `json:"images"`
}

func (w wireProduct) toDomain() domain.Product {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}
	price, ok := money.Coerce(w.Price)
	if !ok || price.IsNegative() {
		price = decimal.Zero
	}
	return domain.Product{
		ID:          id,
		Title:       w.Title,
		Category:    w.Category,
		Description: w.Description,
		Price:       price,
		Condition:   w.Condition,
		Location:    w.Location,
		ContactInfo: w.ContactInfo,
		Images:      w.Images,
	}
}

func serverMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// isClientRejection keeps 4xx answers from tripping the breaker.
func isClientRejection(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status < 500
}

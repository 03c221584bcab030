package http

import (
	"crypto/subtle"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/RajDalvi08/CamousKart/product-service/internal/images"
	"github.com/RajDalvi08/CamousKart/product-service/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	maxImagesPerListing = 5
	multipartMemory     = 16 << 20
	maxRequestBody      = maxImagesPerListing*images.MaxImageSize + 1<<20
)

type ProductHandler struct {
	svc        *service.CatalogService
	adminToken string
	timeout    time.Duration
}

func NewProductHandler(svc *service.CatalogService, adminToken string, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		svc:        svc,
		adminToken: adminToken,
		timeout:    timeout,
	}
}

type PurgeResponse struct {
	Category string `json:"category"`
	Deleted  int64  `json:"deleted"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, "invalid_request", "expected multipart form data", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := formFiles(r.MultipartForm)
	if len(files) > maxImagesPerListing {
		respondError(w, r, http.StatusBadRequest, "too_many_images", "at most 5 images per listing", nil)
		return
	}

	uploads := make([]*images.Upload, 0, len(files))
	for _, fh := range files {
		u, err := prepareFile(fh)
		if err != nil {
			switch {
			case errors.Is(err, images.ErrUnsupportedType):
				respondError(w, r, http.StatusBadRequest, "unsupported_image", err.Error(), fh.Filename)
			case errors.Is(err, images.ErrTooLarge):
				respondError(w, r, http.StatusRequestEntityTooLarge, "image_too_large", err.Error(), fh.Filename)
			default:
				respondError(w, r, http.StatusBadRequest, "invalid_image", "could not read uploaded image", fh.Filename)
			}
			return
		}
		uploads = append(uploads, u)
	}

	in := service.CreateProductInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Condition:   strings.ToLower(strings.TrimSpace(r.FormValue("condition"))),
		Location:    strings.TrimSpace(r.FormValue("location")),
		ContactInfo: strings.TrimSpace(r.FormValue("contactInfo")),
		Images:      uploads,
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	p, err := h.svc.CreateProduct(ctx, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("product created",
		zap.String("product_id", p.ID),
		zap.String("category", p.Category))
	respondJSON(w, r, http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	products, err := h.svc.ListProducts(ctx)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toProductsResponse(products))
}

func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	category := chi.URLParam(r, "category")
	products, err := h.svc.ProductsByCategory(ctx, category)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if len(products) == 0 {
		logger.FromContext(r.Context()).Debug("no products for category", zap.String("category", category))
	}
	respondJSON(w, r, http.StatusOK, toProductsResponse(products))
}

func (h *ProductHandler) PurgeCategory(w http.ResponseWriter, r *http.Request) {
	if h.adminToken == "" {
		respondError(w, r, http.StatusForbidden, "admin_disabled", "administrative endpoints are disabled", nil)
		return
	}
	token := r.Header.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
		respondError(w, r, http.StatusUnauthorized, "unauthorized", "invalid admin token", nil)
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	category := chi.URLParam(r, "category")
	n, err := h.svc.PurgeCategory(ctx, category)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, PurgeResponse{Category: category, Deleted: n})
}

func (h *ProductHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, r, http.StatusBadRequest, "validation_failed", "missing or invalid fields", verr.Fields)
	case errors.Is(err, service.ErrInvalidCategory):
		respondError(w, r, http.StatusBadRequest, "invalid_category", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidPrice):
		respondError(w, r, http.StatusBadRequest, "invalid_price", err.Error(), nil)
	default:
		logger.FromContext(r.Context()).Error("catalog request failed", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal_error", "failed to process request", nil)
	}
}

// formFiles accepts both "images" and "images[]" field names.
func formFiles(form *multipart.Form) []*multipart.FileHeader {
	var files []*multipart.FileHeader
	files = append(files, form.File["images"]...)
	files = append(files, form.File["images[]"]...)
	return files
}

func prepareFile(fh *multipart.FileHeader) (*images.Upload, error) {
	if fh.Size > images.MaxImageSize {
		return nil, images.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return images.Prepare(fh.Filename, f)
}

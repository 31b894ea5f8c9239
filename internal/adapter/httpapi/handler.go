package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/estate-manager/property-service/internal/platform/logger"
	"github.com/estate-manager/property-service/internal/property/domain"
	"github.com/estate-manager/property-service/internal/property/usecase"
	"github.com/estate-manager/property-service/internal/salelog"
)

// PropertyService is the listing CRUD surface the handlers call.
type PropertyService interface {
	Create(ctx context.Context, input usecase.CreateInput) (*domain.Property, error)
	Update(ctx context.Context, id string, input usecase.UpdateInput) (*usecase.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, f domain.Filter) ([]*domain.Property, domain.PageInfo, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// SoldService covers the sold transition, the batch cleanup and the sale
// statistics.
type SoldService interface {
	MarkAsSold(ctx context.Context, id string) (*usecase.SoldConfirmation, error)
	CleanupSold(ctx context.Context) (*usecase.CleanupResult, error)
	SalesStats(ctx context.Context, days int) (*salelog.Stats, error)
}

// MediaService replaces a listing's images with freshly uploaded ones.
type MediaService interface {
	ReplaceImages(ctx context.Context, propertyID string, files []usecase.UploadFile) ([]usecase.UploadedImage, error)
}

type PropertyHandler struct {
	properties     PropertyService
	sold           SoldService
	media          MediaService
	validate       *validator.Validate
	maxUploadBytes int64
	logger         logger.Logger
}

func NewPropertyHandler(
	properties PropertyService,
	sold SoldService,
	media MediaService,
	maxUploadBytes int64,
	log logger.Logger,
) *PropertyHandler {
	return &PropertyHandler{
		properties:     properties,
		sold:           sold,
		media:          media,
		validate:       newValidator(),
		maxUploadBytes: maxUploadBytes,
		logger:         log,
	}
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseListQuery(r.URL.Query())
	if len(errs) > 0 {
		respondValidationErrors(w, "Invalid query parameters", errs)
		return
	}

	properties, page, err := h.properties.List(r.Context(), filter)
	if err != nil {
		h.respondDomainError(w, r, "Failed to fetch properties", err)
		return
	}
	respondPage(w, properties, page)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.properties.GetByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, "Failed to fetch property", err)
		return
	}
	respondData(w, http.StatusOK, p)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, files, parseErrs, err := parseCreateRequest(r, h.maxUploadBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	errs := append(parseErrs, validateStruct(h.validate, payload)...)
	if fe := validateYearBuilt(payload.YearBuilt); fe != nil {
		errs = append(errs, *fe)
	}
	if len(errs) > 0 {
		respondValidationErrors(w, "Validation failed", errs)
		return
	}

	input := usecase.CreateInput{
		ID:            payload.ID,
		Title:         payload.Title,
		Address:       payload.Address,
		Description:   payload.Description,
		Price:         *payload.Price,
		Bedrooms:      *payload.Bedrooms,
		Bathrooms:     *payload.Bathrooms,
		Status:        domain.PropertyStatus(payload.Status),
		SquareFootage: payload.SquareFootage,
		YearBuilt:     payload.YearBuilt,
		PropertyType:  domain.PropertyType(payload.PropertyType),
		Features:      payload.Features,
		Images:        files,
	}
	if payload.Location != nil {
		input.Location = toDomainLocation(payload.Location)
	}

	p, err := h.properties.Create(r.Context(), input)
	if err != nil {
		h.respondDomainError(w, r, "Failed to create property", err)
		return
	}
	respondMessage(w, http.StatusCreated, "Property created successfully", p)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payload, files, parseErrs, err := parseUpdateRequest(r, h.maxUploadBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	errs := append(parseErrs, validateStruct(h.validate, payload)...)
	if fe := validateYearBuilt(payload.YearBuilt); fe != nil {
		errs = append(errs, *fe)
	}
	if len(errs) > 0 {
		respondValidationErrors(w, "Validation failed", errs)
		return
	}

	input := usecase.UpdateInput{
		Title:         payload.Title,
		Address:       payload.Address,
		Description:   payload.Description,
		Price:         payload.Price,
		Bedrooms:      payload.Bedrooms,
		Bathrooms:     payload.Bathrooms,
		SquareFootage: payload.SquareFootage,
		YearBuilt:     payload.YearBuilt,
		Features:      payload.Features,
	}
	if payload.Status != nil {
		status := domain.PropertyStatus(*payload.Status)
		input.Status = &status
	}
	if payload.PropertyType != nil {
		propertyType := domain.PropertyType(*payload.PropertyType)
		input.PropertyType = &propertyType
	}
	if payload.Location != nil {
		loc := toDomainLocation(payload.Location)
		input.Location = &loc
	}
	if len(files) > 0 {
		input.Image = &files[0]
	}

	result, err := h.properties.Update(r.Context(), id, input)
	if err != nil {
		h.respondDomainError(w, r, "Failed to update property", err)
		return
	}
	if result.Sold {
		respondMessage(w, http.StatusOK, "Property marked as sold and removed from listings", nil)
		return
	}
	respondMessage(w, http.StatusOK, "Property updated successfully", result.Property)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.properties.Delete(r.Context(), id); err != nil {
		h.respondDomainError(w, r, "Failed to delete property", err)
		return
	}
	respondMessage(w, http.StatusOK, "Property deleted successfully", nil)
}

func (h *PropertyHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	files, err := readUploads(r.MultipartForm)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read uploaded files", err)
		return
	}

	uploaded, err := h.media.ReplaceImages(r.Context(), id, files)
	if err != nil {
		h.respondDomainError(w, r, "Failed to upload images", err)
		return
	}
	respondMessage(w, http.StatusOK, "Images uploaded successfully", uploaded)
}

func (h *PropertyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.properties.Stats(r.Context())
	if err != nil {
		h.respondDomainError(w, r, "Failed to fetch property stats", err)
		return
	}
	respondData(w, http.StatusOK, stats)
}

func (h *PropertyHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmation, err := h.sold.MarkAsSold(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, "Failed to mark property as sold", err)
		return
	}
	respondMessage(w, http.StatusOK, "Property marked as sold and removed from listings", confirmation)
}

func (h *PropertyHandler) CleanupSold(w http.ResponseWriter, r *http.Request) {
	result, err := h.sold.CleanupSold(r.Context())
	if err != nil {
		h.respondDomainError(w, r, "Failed to clean up sold properties", err)
		return
	}
	respondMessage(w, http.StatusOK, "Sold property cleanup finished", result)
}

func (h *PropertyHandler) SoldStats(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondValidationErrors(w, "Invalid query parameters", []FieldError{
				{Field: "days", Message: "Days must be a positive whole number"},
			})
			return
		}
		days = parsed
	}

	stats, err := h.sold.SalesStats(r.Context(), days)
	if err != nil {
		h.respondDomainError(w, r, "Failed to fetch sales stats", err)
		return
	}
	respondData(w, http.StatusOK, stats)
}

// respondDomainError maps domain errors onto the HTTP surface: not found
// and already sold are client errors, everything else is a 500.
func (h *PropertyHandler) respondDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrPropertyNotFound):
		respondError(w, http.StatusNotFound, "Property not found", nil)
	case errors.Is(err, domain.ErrPropertyAlreadySold):
		respondError(w, http.StatusBadRequest, "Property is already marked as sold", nil)
	case errors.Is(err, domain.ErrNoImageFile):
		respondError(w, http.StatusBadRequest, "No image file provided", nil)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

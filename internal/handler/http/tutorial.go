package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/instruktori/tutorialstore/internal/repository"
	"github.com/instruktori/tutorialstore/internal/service"
	apperrors "github.com/instruktori/tutorialstore/pkg/errors"
	"github.com/instruktori/tutorialstore/pkg/middleware"
	"github.com/instruktori/tutorialstore/pkg/validator"
)

// Response messages that form part of the published API contract.
const (
	msgTutorialCreated  = "Tutorial Created"
	msgTutorialUpdated  = "Tutorial Updated"
	msgTutorialDeleted  = "Tutorial Deleted"
	msgReviewCreated    = "Review Created"
	msgTutorialNotFound = "Tutorial Not Found"
)

// TutorialHandler handles HTTP requests for tutorial endpoints.
type TutorialHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewTutorialHandler creates a new tutorial HTTP handler.
func NewTutorialHandler(svc *service.CatalogService, logger *slog.Logger) *TutorialHandler {
	return &TutorialHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpdateTutorialRequest is the JSON request body for updating a tutorial.
// Every editable field is replaced wholesale; omitted fields become blank.
type UpdateTutorialRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=500"`
	Slug         string   `json:"slug"`
	Image        string   `json:"image"`
	Images       []string `json:"images"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" validate:"gte=0"`
	CountInStock int      `json:"countInStock" validate:"gte=0"`
}

// CreateReviewRequest is the JSON request body for submitting a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// --- Handlers ---

// ListAll handles GET /api/tutorials and returns every tutorial unpaginated.
func (h *TutorialHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tutorials, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tutorials)
}

// ListAdmin handles GET /api/tutorials/admin with the paginated unfiltered
// listing the admin screens consume.
func (h *TutorialHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePagingQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Search handles GET /api/tutorials/search with filtering, sorting, and
// pagination driven by query parameters.
func (h *TutorialHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListCategories handles GET /api/tutorials/categories.
func (h *TutorialHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// GetBySlug handles GET /api/tutorials/slug/{slug}.
func (h *TutorialHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	tutorial, err := h.service.GetTutorialBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tutorial)
}

// GetByID handles GET /api/tutorials/{id}.
func (h *TutorialHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tutorial, err := h.service.GetTutorial(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tutorial)
}

// Create handles POST /api/tutorials. The body is ignored; a placeholder
// tutorial is created for the admin to edit afterwards.
func (h *TutorialHandler) Create(w http.ResponseWriter, r *http.Request) {
	tutorial, err := h.service.CreateTutorial(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tutorialResponse{
		Message:  msgTutorialCreated,
		Tutorial: tutorial,
	})
}

// Update handles PUT /api/tutorials/{id}.
func (h *TutorialHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateTutorialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body: " + err.Error()})
		return
	}

	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	input := &service.UpdateTutorialInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Image:        req.Image,
		Images:       req.Images,
		Category:     req.Category,
		Description:  req.Description,
		Price:        req.Price,
		CountInStock: req.CountInStock,
	}

	if _, err := h.service.UpdateTutorial(r.Context(), chi.URLParam(r, "id"), input); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgTutorialUpdated})
}

// Delete handles DELETE /api/tutorials/{id}.
func (h *TutorialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTutorial(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msgTutorialDeleted})
}

// SubmitReview handles POST /api/tutorials/{id}/reviews. The reviewer name
// is taken from the authenticated identity, never from the body.
func (h *TutorialHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body: " + err.Error()})
		return
	}

	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	review, agg, err := h.service.SubmitReview(r.Context(), chi.URLParam(r, "id"), ident.Name, req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reviewResponse{
		Message:       msgReviewCreated,
		Review:        review,
		NumberReviews: agg.NumberReviews,
		Rating:        agg.Rating,
	})
}

// --- Query parsing ---

// parsePagingQuery reads only the pagination parameters, used by the admin
// listing which never filters.
func parsePagingQuery(q url.Values) (repository.TutorialFilter, error) {
	var filter repository.TutorialFilter

	page, err := intParam(q, "page")
	if err != nil {
		return filter, err
	}
	filter.Page = page

	pageSize, err := intParam(q, "pageSize")
	if err != nil {
		return filter, err
	}
	filter.PageSize = pageSize

	return filter, nil
}

// parseListQuery converts the raw search query string into a typed filter.
// The literal "all" or an empty value disables a criterion.
func parseListQuery(q url.Values) (repository.TutorialFilter, error) {
	filter, err := parsePagingQuery(q)
	if err != nil {
		return filter, err
	}

	if v := q.Get("category"); v != "" && v != "all" {
		filter.Category = &v
	}

	if v := q.Get("query"); v != "" && v != "all" {
		filter.Query = &v
	}

	if v := q.Get("price"); v != "" && v != "all" {
		low, high, err := parsePriceRange(v)
		if err != nil {
			return filter, err
		}
		filter.MinPrice = &low
		filter.MaxPrice = &high
	}

	if v := q.Get("rating"); v != "" && v != "all" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, fmt.Errorf("rating must be a valid number")
		}
		filter.MinRating = &rating
	}

	filter.Order = q.Get("order")

	return filter, nil
}

// parsePriceRange parses a "low-high" price range such as "20-40".
func parsePriceRange(v string) (float64, float64, error) {
	parts := strings.SplitN(v, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("price must be in low-high form, for example 20-40")
	}

	low, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("price must be in low-high form, for example 20-40")
	}

	high, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("price must be in low-high form, for example 20-40")
	}

	if low > high {
		return 0, 0, fmt.Errorf("price range low bound must not exceed the high bound")
	}

	return low, high, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer", name)
	}

	return n, nil
}

// --- Response envelopes ---

type messageResponse struct {
	Message string `json:"message"`
}

type tutorialResponse struct {
	Message  string `json:"message"`
	Tutorial any    `json:"tutorial"`
}

type reviewResponse struct {
	Message       string  `json:"message"`
	Review        any     `json:"review"`
	NumberReviews int     `json:"numberReviews"`
	Rating        float64 `json:"rating"`
}

// --- Helpers ---

func (h *TutorialHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, messageResponse{Message: appErr.Message})
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"

	if errors.Is(err, apperrors.ErrNotFound) {
		message = msgTutorialNotFound
		status = http.StatusNotFound
	} else if errors.Is(err, apperrors.ErrInvalidInput) {
		message = err.Error()
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeJSON(w, status, messageResponse{Message: message})
}

func (h *TutorialHandler) writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		fields := valErr.Fields()
		parts := make([]string, 0, len(fields))
		for field, msg := range fields {
			parts = append(parts, field+" "+msg)
		}
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: strings.Join(parts, "; ")})
		return
	}

	writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

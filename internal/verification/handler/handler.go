package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/profullstack/food-delivery-multivendor/internal/platform/middleware"
	respond "github.com/profullstack/food-delivery-multivendor/internal/transport/http/json"
	"github.com/profullstack/food-delivery-multivendor/internal/transport/http/shared"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
	dErrors "github.com/profullstack/food-delivery-multivendor/pkg/domain-errors"
	"github.com/profullstack/food-delivery-multivendor/pkg/validation"
)

// Service defines the interface for verification operations.
type Service interface {
	Submit(ctx context.Context, userID string, document []byte, filename string, docType models.DocumentType, dateOfBirth time.Time) (*models.Record, error)
	Review(ctx context.Context, userID, reviewerID string, decision models.Decision, rejectionReason string, correctedDateOfBirth *time.Time) (*models.Record, error)
	GetStatus(ctx context.Context, userID string) (*models.Record, error)
	DeleteRecord(ctx context.Context, userID, requestedBy string) error
	EvaluateCart(ctx context.Context, userID string, items []models.CartItem) (*models.CartEvaluation, error)
	ListPendingReviews(ctx context.Context, limit, offset int) ([]models.PendingReview, error)
	CountPendingReviews(ctx context.Context) (int, error)
}

// Handler handles verification endpoints.
type Handler struct {
	logger       *slog.Logger
	verification Service
	now          func() time.Time
}

// New creates a new verification Handler.
func New(verification Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:       logger,
		verification: verification,
		now:          time.Now,
	}
}

// Register registers the user-facing verification routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verification", h.handleSubmit)
	r.Get("/verification/status", h.handleGetStatus)
	r.Delete("/verification", h.handleDeleteOwn)
	r.Post("/cart/evaluate", h.handleEvaluateCart)
}

// RegisterAdmin registers the admin review routes. The caller is expected to
// wrap these in the admin-role middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/verification/pending", h.handleListPending)
	r.Post("/admin/verification/{userID}/review", h.handleReview)
	r.Delete("/admin/verification/{userID}", h.handleDeleteByAdmin)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	userID := middleware.GetUserID(ctx)

	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode submit request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid submit request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	dateOfBirth, err := parseDate(req.DateOfBirth, "date_of_birth")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	document, err := base64.StdEncoding.DecodeString(req.Document)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "document must be base64-encoded"))
		return
	}

	record, err := h.verification.Submit(ctx, userID, document, req.Filename,
		models.DocumentType(req.DocumentType), dateOfBirth)
	if err != nil {
		h.logger.WarnContext(ctx, "document submission refused",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, toRecordResponse(record, h.now()))
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	record, err := h.verification.GetStatus(ctx, userID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to read verification status",
				"request_id", middleware.GetRequestID(ctx),
				"user_id", userID,
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toRecordResponse(record, h.now()))
}

func (h *Handler) handleDeleteOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	if err := h.verification.DeleteRecord(ctx, userID, userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEvaluateCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	userID := middleware.GetUserID(ctx)

	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req EvaluateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid cart evaluation request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	evaluation, err := h.verification.EvaluateCart(ctx, userID, req.toModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to evaluate cart",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, evaluation)
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	reviews, err := h.verification.ListPendingReviews(ctx, limit, offset)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list pending reviews",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	total, err := h.verification.CountPendingReviews(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toPendingListResponse(reviews, total, limit, offset))
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	reviewerID := middleware.GetUserID(ctx)
	userID := chi.URLParam(r, "userID")

	if reviewerID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid review request",
			"request_id", requestID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	var correctedDOB *time.Time
	if req.CorrectedDateOfBirth != "" {
		parsed, err := parseDate(req.CorrectedDateOfBirth, "corrected_date_of_birth")
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		correctedDOB = &parsed
	}

	record, err := h.verification.Review(ctx, userID, reviewerID,
		models.Decision(req.Decision), req.RejectionReason, correctedDOB)
	if err != nil {
		h.logger.WarnContext(ctx, "review decision refused",
			"request_id", requestID,
			"user_id", userID,
			"reviewer_id", reviewerID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, toRecordResponse(record, h.now()))
}

func (h *Handler) handleDeleteByAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adminID := middleware.GetUserID(ctx)
	userID := chi.URLParam(r, "userID")

	if adminID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	if err := h.verification.DeleteRecord(ctx, userID, adminID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

package directory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom/stockroom/internal/platform/httpx"
	"github.com/stockroom/stockroom/internal/shared"
)

// Handler wires HTTP endpoints for the recipient directory.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers directory routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/recipients", h.listRecipients)
	r.Post("/recipients", h.createRecipient)
	r.Get("/recipients/{recipientID}", h.getRecipient)
	r.Put("/recipients/{recipientID}", h.updateRecipient)
}

type recipientRequest struct {
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
	Status     string `json:"status" validate:"omitempty,oneof=active left suspended"`
}

func (h *Handler) listRecipients(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, total, err := h.service.List(r.Context(), r.URL.Query().Get("q"), page, limit)
	if err != nil {
		h.logger.Error("list recipients", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"recipients": recs,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) getRecipient(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "recipientID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) createRecipient(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rec, err := h.service.Create(r.Context(), Recipient{
		Name:       req.Name,
		Department: req.Department,
		Status:     EmploymentStatus(req.Status),
	})
	if err != nil {
		h.logger.Error("create recipient", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) updateRecipient(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.service.Update(r.Context(), chi.URLParam(r, "recipientID"), Recipient{
		Name:       req.Name,
		Department: req.Department,
		Status:     EmploymentStatus(req.Status),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

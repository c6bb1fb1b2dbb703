package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom/stockroom/internal/platform/httpx"
	"github.com/stockroom/stockroom/internal/shared"
)

// Handler wires HTTP endpoints for stock movements and reports.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	calculator *Calculator
	cache      *ReportCache
	validator  *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, calculator *Calculator, cache *ReportCache) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		calculator: calculator,
		cache:      cache,
		validator:  validator.New(),
	}
}

// MountRoutes registers ledger routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/issues", h.postIssue)
	r.Get("/issues/{recordID}", h.getIssue)
	r.Put("/issues/{recordID}", h.editIssue)
	r.Delete("/issues/{recordID}", h.deleteIssue)
	r.Post("/bulk-issues", h.postBulkIssue)
	r.Post("/receipts", h.postReceipt)
	r.Get("/balances/{itemID}", h.getBalance)
	r.Get("/entries", h.listEntries)
	r.Get("/reports/reissue-due", h.reissueDue)
}

type issueRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	ItemID      string `json:"item_id" validate:"required"`
	IssuedOn    string `json:"issued_on" validate:"required,datetime=2006-01-02"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	FirstIssue  bool   `json:"first_issue"`
	AgainstDue  bool   `json:"against_due"`
	Remark      string `json:"remark"`
}

type bulkIssueRequest struct {
	Department  string `json:"department" validate:"required"`
	Location    string `json:"location"`
	ItemID      string `json:"item_id" validate:"required"`
	RecipientID string `json:"recipient_id" validate:"required"`
	IssuedOn    string `json:"issued_on" validate:"required,datetime=2006-01-02"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	Remark      string `json:"remark"`
}

type receiptRequest struct {
	ItemID     string `json:"item_id" validate:"required"`
	ReceivedOn string `json:"received_on" validate:"required,datetime=2006-01-02"`
	Quantity   int64  `json:"quantity" validate:"required,gt=0"`
	Remark     string `json:"remark"`
}

type editIssueRequest struct {
	ItemID     string `json:"item_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"required,gt=0"`
	IssuedOn   string `json:"issued_on" validate:"omitempty,datetime=2006-01-02"`
	FirstIssue bool   `json:"first_issue"`
	AgainstDue bool   `json:"against_due"`
	Remark     string `json:"remark"`
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (h *Handler) postIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	record, err := h.service.PostIssue(r.Context(), IssueInput{
		RecipientID:    req.RecipientID,
		ItemID:         req.ItemID,
		IssuedOn:       parseDate(req.IssuedOn),
		Quantity:       req.Quantity,
		FirstIssue:     req.FirstIssue,
		AgainstDue:     req.AgainstDue,
		Remark:         req.Remark,
		Actor:          shared.ActorFromContext(r.Context()),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Error("post issue", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) getIssue(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Issue(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) editIssue(w http.ResponseWriter, r *http.Request) {
	var req editIssueRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	record, err := h.service.EditIssue(r.Context(), EditIssueInput{
		RecordID:   chi.URLParam(r, "recordID"),
		ItemID:     req.ItemID,
		Quantity:   req.Quantity,
		IssuedOn:   parseDate(req.IssuedOn),
		FirstIssue: req.FirstIssue,
		AgainstDue: req.AgainstDue,
		Remark:     req.Remark,
		Actor:      shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.logger.Error("edit issue", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) deleteIssue(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteIssue(r.Context(), chi.URLParam(r, "recordID"), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.logger.Error("delete issue", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) postBulkIssue(w http.ResponseWriter, r *http.Request) {
	var req bulkIssueRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	record, err := h.service.PostBulkIssue(r.Context(), BulkIssueInput{
		Department:     req.Department,
		Location:       req.Location,
		ItemID:         req.ItemID,
		RecipientID:    req.RecipientID,
		IssuedOn:       parseDate(req.IssuedOn),
		Quantity:       req.Quantity,
		Remark:         req.Remark,
		Actor:          shared.ActorFromContext(r.Context()),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Error("post bulk issue", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) postReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	record, err := h.service.PostReceipt(r.Context(), ReceiptInput{
		ItemID:         req.ItemID,
		ReceivedOn:     parseDate(req.ReceivedOn),
		Quantity:       req.Quantity,
		Remark:         req.Remark,
		Actor:          shared.ActorFromContext(r.Context()),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Error("post receipt", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := h.service.Balance(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bal)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	filter := EntryFilter{ItemID: r.URL.Query().Get("item_id")}
	filter.From = parseDate(r.URL.Query().Get("from"))
	filter.To = parseDate(r.URL.Query().Get("to"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.Entries(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) reissueDue(w http.ResponseWriter, r *http.Request) {
	threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))
	if threshold < 0 {
		threshold = 0
	}

	key := ReissueKey(threshold)
	var due []DueEntry
	if found, err := h.cache.Get(r.Context(), key, &due); err == nil && found {
		httpx.JSON(w, http.StatusOK, map[string]any{"due": due, "cached": true})
		return
	} else if err != nil {
		h.logger.Warn("reissue cache read", slog.Any("error", err))
	}

	due, err := h.calculator.DueForReissue(r.Context(), time.Now().UTC(), threshold)
	if err != nil {
		h.logger.Error("reissue due report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.cache.Set(r.Context(), key, due); err != nil {
		h.logger.Warn("reissue cache write", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"due": due, "cached": false})
}

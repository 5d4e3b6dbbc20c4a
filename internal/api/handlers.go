package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/payment-verification/internal/model"
	"github.com/LeventeLantos/payment-verification/internal/repo"
	"github.com/LeventeLantos/payment-verification/internal/scheduler"
	"github.com/LeventeLantos/payment-verification/internal/service"
	"github.com/LeventeLantos/payment-verification/internal/smsparse"
	"github.com/LeventeLantos/payment-verification/internal/smssource"
	"github.com/LeventeLantos/payment-verification/internal/verify"
)

type Handler struct {
	sched    *scheduler.Scheduler
	verifier *service.Verifier
	repo     repo.PaymentRepository
	// inbox is nil when SMS evidence is simulated.
	inbox *smssource.Inbox
}

func NewHandler(s *scheduler.Scheduler, v *service.Verifier, r repo.PaymentRepository, inbox *smssource.Inbox) *Handler {
	return &Handler{sched: s, verifier: v, repo: r, inbox: inbox}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, h.sched.Status())
}

func (h *Handler) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeStatus(w, h.sched.Status())
}

func (h *Handler) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeStatus(w, h.sched.Status())
}

func writeStatus(w http.ResponseWriter, st scheduler.Status) {
	writeJSON(w, http.StatusOK, map[string]any{
		"running":         st.Running,
		"intervalSeconds": st.Interval.Seconds(),
		"handle":          st.Handle,
	})
}

func (h *Handler) RunVerification(w http.ResponseWriter, r *http.Request) {
	res := h.verifier.CheckPendingPayments(r.Context())
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	items, err := h.repo.ListPayments(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []model.Payment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

// UpdatePaymentStatus is the administrative approve/reject action.
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !req.Status.Terminal() {
		writeError(w, http.StatusBadRequest, "status must be success or failed")
		return
	}

	id := chi.URLParam(r, "id")
	err := h.repo.UpdatePaymentStatus(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repo.ErrNotPending):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
	}
}

func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	outcome, err := h.verifier.ManualVerification(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPaymentNotPending):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "outcome": outcome})
	}
}

type smsRequest struct {
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// ReceiveSMS accepts a forwarded or pasted bank SMS for the next pass.
func (h *Handler) ReceiveSMS(w http.ResponseWriter, r *http.Request) {
	if h.inbox == nil {
		writeError(w, http.StatusConflict, "sms inbox disabled: evidence is simulated")
		return
	}

	var req smsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.inbox.Add(req.Text, req.ReceivedAt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"accepted": true,
		"parsed":   smsparse.Parse(req.Text),
	})
}

type previewRequest struct {
	Text                   string              `json:"text"`
	ExpectedAmount         decimal.NullDecimal `json:"expectedAmount"`
	ExpectedCounterpartyID string              `json:"expectedCounterpartyId"`
}

// PreviewSMS shows what the parser extracts and, given expectations, the
// verdict. Nothing is stored.
func (h *Handler) PreviewSMS(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	msg := smsparse.Parse(req.Text)
	resp := map[string]any{"parsed": msg}
	if req.ExpectedAmount.Valid && req.ExpectedCounterpartyID != "" {
		resp["verdict"] = verify.Validate(msg, req.ExpectedAmount.Decimal, req.ExpectedCounterpartyID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seastack/hostpanel/internal/domain"
	"github.com/seastack/hostpanel/internal/provision"
)

// ProvisionHandler exposes the provisioning operation set over HTTP, one
// route per operation, dispatched to the vendor adapter named in the URL.
type ProvisionHandler struct {
	manager *provision.Manager
	logger  *zap.Logger
}

func NewProvisionHandler(manager *provision.Manager, logger *zap.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		manager: manager,
		logger:  logger,
	}
}

type errorResponse struct {
	Message   string         `json:"message"`
	Kind      string         `json:"kind,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Debug     map[string]any `json:"debug,omitempty"`
	ErrorID   string         `json:"error_id"`
	Timestamp time.Time      `json:"timestamp"`
}

type loginURLResponse struct {
	URL string `json:"url"`
}

type terminateResponse struct {
	Message string `json:"message"`
}

// Create provisions a new hosting account.
func (h *ProvisionHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	var params domain.CreateParams
	if !h.decode(w, r, &params) {
		return
	}

	account, err := p.Create(r.Context(), &params)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, account)
}

// Suspend disables an existing account.
func (h *ProvisionHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	var params domain.SuspendParams
	if !h.decode(w, r, &params) {
		return
	}

	account, err := p.Suspend(r.Context(), &params)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, account)
}

// Unsuspend reactivates a suspended account.
func (h *ProvisionHandler) Unsuspend(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	var ref domain.AccountRef
	if !h.decode(w, r, &ref) {
		return
	}

	account, err := p.Unsuspend(r.Context(), ref)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, account)
}

// Terminate deletes an account.
func (h *ProvisionHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	var ref domain.AccountRef
	if !h.decode(w, r, &ref) {
		return
	}

	if err := p.Terminate(r.Context(), ref); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, terminateResponse{Message: "Account Terminated"})
}

// GetInfo returns the current account record.
func (h *ProvisionHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	account, err := p.GetInfo(r.Context(), refFromQuery(r))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, account)
}

// GetUsage returns current resource consumption.
func (h *ProvisionHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	usage, err := p.GetUsage(r.Context(), refFromQuery(r))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, usage)
}

// ChangePassword updates or resets the account owner's password.
func (h *ProvisionHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	var params domain.ChangePasswordParams
	if !h.decode(w, r, &params) {
		return
	}

	if err := p.ChangePassword(r.Context(), &params); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, terminateResponse{Message: "Password Updated"})
}

// ChangePackage moves the account to a different plan.
func (h *ProvisionHandler) ChangePackage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	var params domain.ChangePackageParams
	if !h.decode(w, r, &params) {
		return
	}

	account, err := p.ChangePackage(r.Context(), &params)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, account)
}

// LoginURL returns a control-panel login URL for the account.
func (h *ProvisionHandler) LoginURL(w http.ResponseWriter, r *http.Request) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	params := domain.LoginURLParams{
		AccountRef: refFromQuery(r),
		Email:      r.URL.Query().Get("email"),
	}

	url, err := p.LoginURL(r.Context(), &params)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, loginURLResponse{URL: url})
}

// GrantReseller enables reseller privileges on the account.
func (h *ProvisionHandler) GrantReseller(w http.ResponseWriter, r *http.Request) {
	h.resellerOp(w, r, true)
}

// RevokeReseller removes reseller privileges from the account.
func (h *ProvisionHandler) RevokeReseller(w http.ResponseWriter, r *http.Request) {
	h.resellerOp(w, r, false)
}

func (h *ProvisionHandler) resellerOp(w http.ResponseWriter, r *http.Request, grant bool) {
	p, ok := h.provider(w, r)
	if !ok {
		return
	}

	var ref domain.AccountRef
	if !h.decode(w, r, &ref) {
		return
	}

	var err error
	if grant {
		err = p.GrantReseller(r.Context(), ref)
	} else {
		err = p.RevokeReseller(r.Context(), ref)
	}
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, terminateResponse{Message: "Reseller Privileges Updated"})
}

func (h *ProvisionHandler) provider(w http.ResponseWriter, r *http.Request) (provision.Provisioner, bool) {
	name := chi.URLParam(r, "provider")
	p, err := h.manager.Get(name)
	if err != nil {
		h.respondWithError(w, r, err)
		return nil, false
	}
	return p, true
}

func (h *ProvisionHandler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		h.logger.Error("Invalid request body", zap.Error(err))
		h.respondWithError(w, r, provision.BadInput("Invalid request body"))
		return false
	}
	return true
}

func refFromQuery(r *http.Request) domain.AccountRef {
	q := r.URL.Query()
	return domain.AccountRef{
		CustomerID:     q.Get("customer_id"),
		SubscriptionID: q.Get("subscription_id"),
	}
}

func (h *ProvisionHandler) respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondWithError maps the normalized error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an unexpected failure and surfaces as a
// plain 500 without leaking its details.
func (h *ProvisionHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	errorID := uuid.New().String()

	var pe *provision.Error
	if !errors.As(err, &pe) {
		h.logger.Error("Unexpected provisioning failure",
			zap.String("error_id", errorID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.respondWithJSON(w, http.StatusInternalServerError, errorResponse{
			Message:   "Internal server error",
			ErrorID:   errorID,
			Timestamp: time.Now(),
		})
		return
	}

	status := http.StatusInternalServerError
	switch pe.Kind {
	case provision.KindBadInput:
		status = http.StatusBadRequest
	case provision.KindNotFound:
		status = http.StatusNotFound
	case provision.KindUnsupported:
		status = http.StatusUnprocessableEntity
	case provision.KindUpstream:
		status = http.StatusBadGateway
	}

	h.logger.Error("Provisioning operation failed",
		zap.String("error_id", errorID),
		zap.String("path", r.URL.Path),
		zap.String("kind", string(pe.Kind)),
		zap.Error(err),
	)

	h.respondWithJSON(w, status, errorResponse{
		Message:   pe.Message,
		Kind:      string(pe.Kind),
		Data:      pe.Data,
		Debug:     pe.Debug,
		ErrorID:   errorID,
		Timestamp: time.Now(),
	})
}

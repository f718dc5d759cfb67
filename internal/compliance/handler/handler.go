package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"txwatch/internal/compliance/models"
	"txwatch/internal/compliance/service"
	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
	"txwatch/pkg/platform/httputil"
	"txwatch/pkg/requestcontext"
)

// Service defines the compliance operations exposed over HTTP.
type Service interface {
	RegisterClient(ctx context.Context, cmd service.RegisterClientCommand) (*models.Client, error)
	GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	ClientReport(ctx context.Context, clientID id.ClientID, period models.ReportPeriod) (*models.ClientReport, error)
	SubmitTransaction(ctx context.Context, cmd service.SubmitTransactionCommand) (*service.EvaluationResult, error)
	ReevaluateTransaction(ctx context.Context, txID id.TransactionID) (*service.EvaluationResult, error)
	ListTransactions(ctx context.Context, clientID id.ClientID) ([]models.Transaction, error)
	ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error)
	UpdateAlertStatus(ctx context.Context, alertID id.AlertID, status string) (*models.Alert, error)
}

// Handler wires compliance endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Post("/", h.HandleRegisterClient)
		r.Get("/", h.HandleListClients)
		r.Get("/{id}", h.HandleGetClient)
		r.Get("/{id}/report", h.HandleClientReport)
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.HandleSubmitTransaction)
		r.Get("/", h.HandleListTransactions)
		r.Post("/{id}/reevaluate", h.HandleReevaluateTransaction)
	})
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.HandleListAlerts)
		r.Patch("/{id}/status", h.HandleUpdateAlertStatus)
	})
}

// HandleRegisterClient handles POST /clients.
func (h *Handler) HandleRegisterClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterClientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	client, err := h.service.RegisterClient(ctx, service.RegisterClientCommand{
		Name:      req.Name,
		Country:   req.Country,
		RiskLevel: req.RiskLevel,
		KYCStatus: req.KYCStatus,
	})
	if err != nil {
		h.fail(w, r, "failed to register client", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toClientResponse(client))
}

// HandleListClients handles GET /clients.
func (h *Handler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list clients", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"clients": toClientResponses(clients)})
}

// HandleGetClient handles GET /clients/{id}.
func (h *Handler) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	client, err := h.service.GetClient(r.Context(), clientID)
	if err != nil {
		h.fail(w, r, "failed to get client", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// HandleClientReport handles GET /clients/{id}/report?from=&to=.
func (h *Handler) HandleClientReport(w http.ResponseWriter, r *http.Request) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	period, err := parseReportPeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.service.ClientReport(r.Context(), clientID, period)
	if err != nil {
		h.fail(w, r, "failed to build client report", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toReportResponse(report))
}

// HandleSubmitTransaction handles POST /transactions. The response carries the
// stored transaction with every alert it raised.
func (h *Handler) HandleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SubmitTransactionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SubmitTransaction(ctx, service.SubmitTransactionCommand{
		ClientID:     req.ParsedClientID(),
		Type:         req.Type,
		Amount:       string(req.Amount),
		Currency:     req.Currency,
		Counterparty: req.Counterparty,
		OccurredAt:   req.ParsedOccurredAt(),
	})
	if err != nil {
		h.fail(w, r, "transaction submission failed", err)
		return
	}

	h.logger.InfoContext(ctx, "transaction evaluated",
		"request_id", requestID,
		"client_id", result.Transaction.ClientID,
		"transaction_id", result.Transaction.ID,
		"alerts", len(result.Alerts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toEvaluationResponse(result))
}

// HandleListTransactions handles GET /transactions?client_id=.
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "client_id query parameter is required"))
		return
	}
	clientID, err := id.ParseClientID(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	txs, err := h.service.ListTransactions(r.Context(), clientID)
	if err != nil {
		h.fail(w, r, "failed to list transactions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"transactions": toTransactionResponses(txs)})
}

// HandleReevaluateTransaction handles POST /transactions/{id}/reevaluate.
func (h *Handler) HandleReevaluateTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := id.ParseTransactionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.ReevaluateTransaction(r.Context(), txID)
	if err != nil {
		h.fail(w, r, "transaction re-evaluation failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEvaluationResponse(result))
}

// HandleListAlerts handles GET /alerts?client_id=&status=.
func (h *Handler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseAlertFilter(q.Get("client_id"), q.Get("status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	alerts, err := h.service.ListAlerts(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "failed to list alerts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"alerts": toAlertResponses(alerts)})
}

// HandleUpdateAlertStatus handles PATCH /alerts/{id}/status.
func (h *Handler) HandleUpdateAlertStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	alertID, err := id.ParseAlertID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateAlertStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	alert, err := h.service.UpdateAlertStatus(ctx, alertID, string(req.ParsedStatus()))
	if err != nil {
		h.fail(w, r, "failed to update alert status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAlertResponse(*alert))
}

// fail logs server-side failures at error level and client mistakes at warn.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"path", r.URL.Path,
		"error", err,
	)
	httputil.WriteError(w, err)
}

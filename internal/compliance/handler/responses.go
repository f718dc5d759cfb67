package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"txwatch/internal/compliance/models"
	"txwatch/internal/compliance/service"
)

// Amounts are rendered as decimal strings so clients never see float rounding.

type ClientResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	RiskLevel    string    `json:"risk_level"`
	KYCStatus    string    `json:"kyc_status"`
	RegisteredAt time.Time `json:"registered_at"`
}

type TransactionResponse struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	Counterparty string    `json:"counterparty,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type AlertResponse struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	TransactionID string    `json:"transaction_id"`
	Rule          string    `json:"rule"`
	Severity      string    `json:"severity"`
	Status        string    `json:"status"`
	Description   string    `json:"description"`
	RaisedAt      time.Time `json:"raised_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EvaluationResponse is returned by submission and re-evaluation.
type EvaluationResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Alerts      []AlertResponse     `json:"alerts"`
}

type ReportResponse struct {
	Client           ClientResponse                   `json:"client"`
	From             *time.Time                       `json:"from,omitempty"`
	To               *time.Time                       `json:"to,omitempty"`
	TotalsByCurrency map[string]string                `json:"totals_by_currency"`
	ByType           map[string]TypeBreakdownResponse `json:"by_type"`
	TransactionCount int                              `json:"transaction_count"`
	AlertCount       int                              `json:"alert_count"`
	Transactions     []TransactionResponse            `json:"transactions"`
}

type TypeBreakdownResponse struct {
	Count            int               `json:"count"`
	TotalsByCurrency map[string]string `json:"totals_by_currency"`
}

func toClientResponse(c *models.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		Country:      c.Country,
		RiskLevel:    string(c.RiskLevel),
		KYCStatus:    string(c.KYCStatus),
		RegisteredAt: c.RegisteredAt,
	}
}

func toClientResponses(clients []models.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, toClientResponse(&clients[i]))
	}
	return out
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID.String(),
		ClientID:     t.ClientID.String(),
		Type:         string(t.Type),
		Amount:       t.Amount.String(),
		Currency:     t.Currency,
		Counterparty: t.Counterparty,
		OccurredAt:   t.OccurredAt,
	}
}

func toTransactionResponses(txs []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toAlertResponse(a models.Alert) AlertResponse {
	return AlertResponse{
		ID:            a.ID.String(),
		ClientID:      a.ClientID.String(),
		TransactionID: a.TransactionID.String(),
		Rule:          a.Rule,
		Severity:      string(a.Severity),
		Status:        string(a.Status),
		Description:   a.Description,
		RaisedAt:      a.RaisedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toAlertResponses(alerts []models.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	return out
}

func toEvaluationResponse(res *service.EvaluationResult) EvaluationResponse {
	return EvaluationResponse{
		Transaction: toTransactionResponse(res.Transaction),
		Alerts:      toAlertResponses(res.Alerts),
	}
}

func toReportResponse(r *models.ClientReport) ReportResponse {
	byType := make(map[string]TypeBreakdownResponse, len(r.ByType))
	for t, b := range r.ByType {
		byType[string(t)] = TypeBreakdownResponse{Count: b.Count, TotalsByCurrency: amountStrings(b.TotalsByCurrency)}
	}
	return ReportResponse{
		Client:           toClientResponse(&r.Client),
		From:             r.From,
		To:               r.To,
		TotalsByCurrency: amountStrings(r.TotalsByCurrency),
		ByType:           byType,
		TransactionCount: r.TransactionCount,
		AlertCount:       r.AlertCount,
		Transactions:     toTransactionResponses(r.Transactions),
	}
}

func amountStrings(totals map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(totals))
	for cur, amount := range totals {
		out[cur] = amount.String()
	}
	return out
}

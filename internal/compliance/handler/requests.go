package handler

import (
	"strconv"
	"strings"
	"time"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

// RegisterClientRequest is the body of POST /clients.
type RegisterClientRequest struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	RiskLevel string `json:"risk_level"`
	KYCStatus string `json:"kyc_status"`
}

func (r *RegisterClientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Name) > 200 {
		return dErrors.New(dErrors.CodeValidation, "name must be 200 characters or less")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Country = strings.TrimSpace(r.Country)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Country == "" {
		return dErrors.New(dErrors.CodeValidation, "country is required")
	}
	return nil
}

// AmountField keeps the literal text of a JSON number or string so amounts
// are parsed as decimals, never through float64. Non-numeric text is left for
// the domain parser to reject.
type AmountField string

func (a *AmountField) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*a = AmountField(s)
	return nil
}

// SubmitTransactionRequest is the body of POST /transactions.
type SubmitTransactionRequest struct {
	ClientID     string      `json:"client_id"`
	Type         string      `json:"type"`
	Amount       AmountField `json:"amount"`
	Currency     string      `json:"currency"`
	Counterparty string      `json:"counterparty"`
	OccurredAt   string      `json:"occurred_at"`

	// Parsed values (populated by Validate)
	parsedClientID   id.ClientID
	parsedOccurredAt time.Time
}

// occurredAtLayouts are tried in order. Layouts without an offset are read as UTC.
var occurredAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func (r *SubmitTransactionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Counterparty) > 200 {
		return dErrors.New(dErrors.CodeValidation, "counterparty must be 200 characters or less")
	}

	clientID, err := id.ParseClientID(strings.TrimSpace(r.ClientID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "client_id must be a valid client identifier")
	}
	r.parsedClientID = clientID

	if s := strings.TrimSpace(r.OccurredAt); s != "" {
		ts, ok := parseOccurredAt(s)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "occurred_at must be an ISO-8601 date-time")
		}
		r.parsedOccurredAt = ts
	}
	r.Counterparty = strings.TrimSpace(r.Counterparty)
	return nil
}

func parseOccurredAt(s string) (time.Time, bool) {
	for _, layout := range occurredAtLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func (r *SubmitTransactionRequest) ParsedClientID() id.ClientID {
	return r.parsedClientID
}

func (r *SubmitTransactionRequest) ParsedOccurredAt() time.Time {
	return r.parsedOccurredAt
}

// UpdateAlertStatusRequest is the body of PATCH /alerts/{id}/status.
type UpdateAlertStatusRequest struct {
	Status string `json:"status"`

	parsedStatus models.AlertStatus
}

func (r *UpdateAlertStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := models.ParseAlertStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsedStatus = status
	return nil
}

func (r *UpdateAlertStatusRequest) ParsedStatus() models.AlertStatus {
	return r.parsedStatus
}

// parseAlertFilter reads client_id and a comma separated status list.
func parseAlertFilter(clientID, status string) (models.AlertFilter, error) {
	var filter models.AlertFilter
	if clientID = strings.TrimSpace(clientID); clientID != "" {
		parsed, err := id.ParseClientID(clientID)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeValidation, "client_id must be a valid client identifier")
		}
		filter.ClientID = &parsed
	}
	for part := range strings.SplitSeq(status, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		st, err := models.ParseAlertStatus(part)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	return filter, nil
}

// parseReportPeriod reads from/to as dates (inclusive) or date-times.
func parseReportPeriod(from, to string) (models.ReportPeriod, error) {
	var period models.ReportPeriod
	if from = strings.TrimSpace(from); from != "" {
		ts, err := parseBound(from, false)
		if err != nil {
			return period, dErrors.New(dErrors.CodeValidation, "from must be a date or date-time")
		}
		period.From = ts
	}
	if to = strings.TrimSpace(to); to != "" {
		ts, err := parseBound(to, true)
		if err != nil {
			return period, dErrors.New(dErrors.CodeValidation, "to must be a date or date-time")
		}
		period.To = ts
	}
	return period, nil
}

// parseBound accepts a bare date, which extends to the end of that day when
// it closes the period.
func parseBound(s string, endOfDay bool) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Nanosecond), nil
		}
		return d, nil
	}
	if ts, ok := parseOccurredAt(s); ok {
		return ts, nil
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation, "invalid date")
}

package models

import (
	"strings"
	"time"

	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

// Severity ranks how urgently an alert needs review.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

func ParseSeverity(s string) (Severity, error) {
	v := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid severity %q", s)
	}
	return v, nil
}

// AlertStatus is the review state of an alert.
type AlertStatus string

const (
	AlertStatusNew         AlertStatus = "new"
	AlertStatusUnderReview AlertStatus = "under_review"
	AlertStatusResolved    AlertStatus = "resolved"
)

func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusNew, AlertStatusUnderReview, AlertStatusResolved:
		return true
	}
	return false
}

func ParseAlertStatus(s string) (AlertStatus, error) {
	v := AlertStatus(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid alert status %q", s)
	}
	return v, nil
}

// Alert flags a transaction for compliance review.
//
// Invariants:
//   - Status starts as new
//   - Only Status and UpdatedAt change after creation
//   - At most one alert exists per (TransactionID, Rule)
type Alert struct {
	ID            id.AlertID       `json:"id"`
	ClientID      id.ClientID      `json:"client_id"`
	TransactionID id.TransactionID `json:"transaction_id"`
	Rule          string           `json:"rule"`
	Severity      Severity         `json:"severity"`
	Status        AlertStatus      `json:"status"`
	RaisedAt      time.Time        `json:"raised_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Description   string           `json:"description"`
}

// Key identifies the (transaction, rule) pair an alert was raised for.
func (a Alert) Key() AlertKey {
	return AlertKey{TransactionID: a.TransactionID, Rule: a.Rule}
}

// AlertKey is the uniqueness key of an alert.
type AlertKey struct {
	TransactionID id.TransactionID
	Rule          string
}

// ChangeStatus overwrites the review status. Every transition between known
// statuses is allowed, including reopening a resolved alert.
func (a *Alert) ChangeStatus(status AlertStatus, now time.Time) error {
	if !status.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "invalid alert status %q", status)
	}
	a.Status = status
	a.UpdatedAt = now
	return nil
}

// AlertFilter narrows alert listings. Zero values match everything.
type AlertFilter struct {
	ClientID *id.ClientID
	Statuses []AlertStatus
}

// Matches reports whether a passes the filter.
func (f AlertFilter) Matches(a Alert) bool {
	if f.ClientID != nil && a.ClientID != *f.ClientID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

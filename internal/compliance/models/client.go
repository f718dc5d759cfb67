package models

import (
	"strings"
	"time"

	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

// RiskLevel is the onboarding risk classification of a client.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

func ParseRiskLevel(s string) (RiskLevel, error) {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid risk_level %q", s)
	}
	return r, nil
}

// KYCStatus is the know-your-customer verification state of a client.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

func (k KYCStatus) IsValid() bool {
	switch k {
	case KYCStatusPending, KYCStatusApproved, KYCStatusRejected:
		return true
	}
	return false
}

func ParseKYCStatus(s string) (KYCStatus, error) {
	k := KYCStatus(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid kyc_status %q", s)
	}
	return k, nil
}

// Client is a monitored account holder. Read-only from the engine's point of view.
//
// Invariants:
//   - Name and Country are non-empty
//   - RiskLevel and KYCStatus hold known values
type Client struct {
	ID           id.ClientID `json:"id"`
	Name         string      `json:"name"`
	Country      string      `json:"country"`
	RiskLevel    RiskLevel   `json:"risk_level"`
	KYCStatus    KYCStatus   `json:"kyc_status"`
	RegisteredAt time.Time   `json:"registered_at"`
}

func NewClient(clientID id.ClientID, name, country string, risk RiskLevel, kyc KYCStatus, now time.Time) (*Client, error) {
	name = strings.TrimSpace(name)
	country = strings.TrimSpace(country)
	if clientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client id cannot be nil")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client name cannot be empty")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client name must be 200 characters or less")
	}
	if country == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client country cannot be empty")
	}
	if !risk.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid risk level")
	}
	if !kyc.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid kyc status")
	}
	return &Client{
		ID:           clientID,
		Name:         name,
		Country:      country,
		RiskLevel:    risk,
		KYCStatus:    kyc,
		RegisteredAt: now,
	}, nil
}

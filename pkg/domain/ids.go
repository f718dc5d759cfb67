package domain

import (
	"github.com/google/uuid"

	dErrors "txwatch/pkg/domain-errors"
)

// Typed identifiers keep client, transaction and alert IDs from being mixed up
// at compile time. Construct them with the Parse functions at trust boundaries
// or with the New functions when minting.
type (
	ClientID      uuid.UUID
	TransactionID uuid.UUID
	AlertID       uuid.UUID
)

func NewClientID() ClientID           { return ClientID(uuid.New()) }
func NewTransactionID() TransactionID { return TransactionID(uuid.New()) }
func NewAlertID() AlertID             { return AlertID(uuid.New()) }

// ParseClientID parses a client identifier from external input.
// Errors: CodeInvalidInput for empty, malformed or nil UUIDs.
func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s, "client_id")
	return ClientID(u), err
}

// ParseTransactionID parses a transaction identifier from external input.
func ParseTransactionID(s string) (TransactionID, error) {
	u, err := parseUUID(s, "transaction_id")
	return TransactionID(u), err
}

// ParseAlertID parses an alert identifier from external input.
func ParseAlertID(s string) (AlertID, error) {
	u, err := parseUUID(s, "alert_id")
	return AlertID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}

func (id ClientID) String() string      { return uuid.UUID(id).String() }
func (id TransactionID) String() string { return uuid.UUID(id).String() }
func (id AlertID) String() string       { return uuid.UUID(id).String() }

func (id ClientID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id TransactionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AlertID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

func (id ClientID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id TransactionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id AlertID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }

func (id *ClientID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TransactionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AlertID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }

package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "txwatch/pkg/domain-errors"
)

// parsers erases the concrete ID type so every identifier is held to the
// same rules.
var parsers = map[string]func(string) (uuid.UUID, error){
	"client": func(s string) (uuid.UUID, error) {
		v, err := ParseClientID(s)
		return uuid.UUID(v), err
	},
	"transaction": func(s string) (uuid.UUID, error) {
		v, err := ParseTransactionID(s)
		return uuid.UUID(v), err
	},
	"alert": func(s string) (uuid.UUID, error) {
		v, err := ParseAlertID(s)
		return uuid.UUID(v), err
	},
}

func TestParseIDs(t *testing.T) {
	valid := uuid.New()
	rejected := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"malformed", "not-a-uuid"},
		{"nil uuid", uuid.Nil.String()},
		{"whitespace", "   "},
		{"sql fragment", "'; DROP TABLE alerts;--"},
		{"embedded null byte", "550e8400\x00-e29b-41d4-a716-446655440000"},
		{"oversized", strings.Repeat("f", 1000)},
	}

	for kind, parse := range parsers {
		t.Run(kind, func(t *testing.T) {
			got, err := parse(valid.String())
			require.NoError(t, err)
			assert.Equal(t, valid, got)

			upper, err := parse(strings.ToUpper(valid.String()))
			require.NoError(t, err, "uppercase hex is accepted")
			assert.Equal(t, valid, upper)

			for _, tc := range rejected {
				_, err := parse(tc.input)
				require.Error(t, err, tc.name)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), tc.name)
			}
		})
	}
}

func TestParseIDs_MessageNamesField(t *testing.T) {
	_, err := ParseTransactionID("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction_id")

	_, err = ParseAlertID("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alert_id")
}

func TestIDs_TextEncoding(t *testing.T) {
	type alertRef struct {
		Alert       AlertID       `json:"alert_id"`
		Transaction TransactionID `json:"transaction_id"`
	}
	in := alertRef{Alert: NewAlertID(), Transaction: NewTransactionID()}

	body, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"alert_id":"`+in.Alert.String()+`","transaction_id":"`+in.Transaction.String()+`"}`,
		string(body))

	var out alertRef
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, in, out)

	var zero ClientID
	assert.True(t, zero.IsNil())
	assert.False(t, NewClientID().IsNil())
}

// Package engine evaluates a candidate transaction against the ordered rule
// registry and turns findings into alerts.
//
// Evaluation is synchronous and does no I/O. The engine keeps no state
// between calls; callers supply the client and history every time and own
// persistence of the result. Callers must serialize evaluations per client,
// since the aggregate rules depend on history being complete.
package engine

import (
	"time"

	"github.com/google/uuid"

	"txwatch/internal/compliance/aggregate"
	"txwatch/internal/compliance/models"
	"txwatch/internal/compliance/policy"
	"txwatch/internal/compliance/rules"
	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

// Result is the evaluated transaction and the alerts it raised, in rule order.
type Result struct {
	Transaction models.Transaction
	Alerts      []models.Alert
}

// Engine runs rules. Construct with New.
type Engine struct {
	cfg      policy.RuleConfig
	registry *rules.Registry
	now      func() time.Time
	newID    func() uuid.UUID
}

type Option func(*Engine)

// WithClock overrides the time source used for Alert.RaisedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides how alert and transaction IDs are minted.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// WithRegistry replaces the default rule set.
func WithRegistry(reg *rules.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// New validates cfg and builds an engine. An invalid configuration fails here
// rather than at evaluation time.
func New(cfg policy.RuleConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg.Clone(),
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		reg, err := rules.DefaultRegistry(e.cfg)
		if err != nil {
			return nil, err
		}
		e.registry = reg
	}
	return e, nil
}

// Config returns the policy the engine was built with.
func (e *Engine) Config() policy.RuleConfig {
	return e.cfg.Clone()
}

// RuleNames lists the registered rules in evaluation order.
func (e *Engine) RuleNames() []string {
	rs := e.registry.Rules()
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name())
	}
	return names
}

// Evaluate validates candidate and runs every rule against it.
//
// A validation failure returns a CodeValidation error, no alerts and runs no
// rule. Otherwise every accepting rule is evaluated; rules do not veto or
// short-circuit each other, and each triggered rule yields exactly one alert.
// A candidate without an ID is assigned one.
func (e *Engine) Evaluate(candidate models.Transaction, client *models.Client, history []models.Transaction) (Result, error) {
	if err := validate(candidate, client); err != nil {
		return Result{}, err
	}
	if candidate.ID.IsNil() {
		candidate.ID = id.TransactionID(e.newID())
	}

	agg := aggregate.Build(candidate, history)
	raisedAt := e.now()
	fired := make(map[string]struct{})
	var alerts []models.Alert

	for _, rule := range e.registry.Rules() {
		if !rule.Accepts(candidate, *client) {
			continue
		}
		finding := rule.Evaluate(candidate, *client, agg)
		if finding == nil {
			continue
		}
		if _, dup := fired[rule.Name()]; dup {
			continue
		}
		fired[rule.Name()] = struct{}{}
		alerts = append(alerts, models.Alert{
			ID:            id.AlertID(e.newID()),
			ClientID:      client.ID,
			TransactionID: candidate.ID,
			Rule:          rule.Name(),
			Severity:      finding.Severity,
			Status:        models.AlertStatusNew,
			RaisedAt:      raisedAt,
			UpdatedAt:     raisedAt,
			Description:   finding.Description,
		})
	}

	return Result{Transaction: candidate, Alerts: alerts}, nil
}

func validate(candidate models.Transaction, client *models.Client) error {
	if candidate.ClientID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	if client == nil || client.ID != candidate.ClientID {
		return dErrors.New(dErrors.CodeValidation, "client_id does not reference an existing client")
	}
	if err := models.ValidateAmount(candidate.Amount); err != nil {
		return err
	}
	if !candidate.Type.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "invalid transaction type %q", candidate.Type)
	}
	if candidate.Currency == "" {
		return dErrors.New(dErrors.CodeValidation, "currency is required")
	}
	if candidate.OccurredAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "occurred_at is required")
	}
	return nil
}

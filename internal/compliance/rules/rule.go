// Package rules defines the compliance rules and the ordered registry the
// engine evaluates them from.
//
// A rule is a predicate plus a finding. Rules never see each other's output
// and never stop evaluation: the engine asks every rule that accepts the
// transaction and raises one alert per finding.
package rules

import (
	"txwatch/internal/compliance/aggregate"
	"txwatch/internal/compliance/models"
)

// Rule is an independent compliance check.
type Rule interface {
	// Name is the stable identifier stored on alerts.
	Name() string
	// Accepts reports whether the rule applies to tx at all.
	Accepts(tx models.Transaction, client models.Client) bool
	// Evaluate returns a finding when the rule triggers, nil otherwise.
	Evaluate(tx models.Transaction, client models.Client, agg *aggregate.Aggregates) *Finding
}

// Finding is what a triggered rule reports. The engine turns it into an alert.
type Finding struct {
	Severity    models.Severity
	Description string
}

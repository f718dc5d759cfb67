package rules

import (
	"fmt"

	"txwatch/internal/compliance/aggregate"
	"txwatch/internal/compliance/models"
)

// NameHighRiskCountry identifies alerts raised by HighRiskCountry.
const NameHighRiskCountry = "Transfer from high-risk country"

// CountryList reports whether a country is on the high-risk list.
type CountryList interface {
	IsHighRisk(country string) bool
}

// HighRiskCountry fires on every transfer made by a client located in a
// high-risk country. Deposits and withdrawals are out of scope.
type HighRiskCountry struct {
	countries CountryList
}

func NewHighRiskCountry(countries CountryList) *HighRiskCountry {
	return &HighRiskCountry{countries: countries}
}

func (r *HighRiskCountry) Name() string { return NameHighRiskCountry }

func (r *HighRiskCountry) Accepts(tx models.Transaction, _ models.Client) bool {
	return tx.Type == models.TransactionTypeTransfer
}

func (r *HighRiskCountry) Evaluate(tx models.Transaction, client models.Client, _ *aggregate.Aggregates) *Finding {
	if !r.countries.IsHighRisk(client.Country) {
		return nil
	}
	return &Finding{
		Severity:    models.SeverityHigh,
		Description: fmt.Sprintf("Transfer of %s by a client located in high-risk country %s", formatMoney(tx.Currency, tx.Amount), client.Country),
	}
}

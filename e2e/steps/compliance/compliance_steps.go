package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	PATCH(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Remember(name, value string)
	Recall(name string) (string, error)
}

// RegisterSteps registers client, transaction and alert step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &complianceSteps{tc: tc}

	// Clients
	ctx.Step(`^a client "([^"]*)" from "([^"]*)" is registered$`, steps.clientIsRegistered)

	// Submission and re-evaluation
	ctx.Step(`^"([^"]*)" submits a (deposit|withdrawal|transfer) of "([^"]*)" ([A-Z]{3}) at "([^"]*)"$`, steps.submits)
	ctx.Step(`^I re-evaluate the last transaction$`, steps.reevaluateLast)
	ctx.Step(`^the evaluation should raise (\d+) alerts?$`, steps.evaluationRaisedCount)
	ctx.Step(`^the evaluation should raise the "([^"]*)" alert$`, steps.evaluationRaisedRule)

	// Alert review
	ctx.Step(`^I mark the "([^"]*)" alert as "([^"]*)"$`, steps.markAlert)
	ctx.Step(`^"([^"]*)" should have (\d+) alerts? with status "([^"]*)"$`, steps.alertsWithStatus)

	// Reports
	ctx.Step(`^I request the report for "([^"]*)" from "([^"]*)" to "([^"]*)"$`, steps.requestReport)
	ctx.Step(`^the report should total "([^"]*)" ([A-Z]{3}) over (\d+) transactions?$`, steps.reportTotals)
}

type complianceSteps struct {
	tc TestContext
	// State for tracking across steps
	lastAlerts []alert
}

type alert struct {
	ID     string `json:"id"`
	Rule   string `json:"rule"`
	Status string `json:"status"`
}

type evaluation struct {
	Transaction struct {
		ID string `json:"id"`
	} `json:"transaction"`
	Alerts []alert `json:"alerts"`
}

func (s *complianceSteps) clientIsRegistered(ctx context.Context, name, country string) error {
	if err := s.tc.POST("/clients", map[string]interface{}{
		"name":       name,
		"country":    country,
		"risk_level": "low",
		"kyc_status": "verified",
	}); err != nil {
		return err
	}
	if err := s.expectStatus(201); err != nil {
		return err
	}
	clientID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Remember("client:"+name, fmt.Sprint(clientID))
	return nil
}

func (s *complianceSteps) submits(ctx context.Context, name, txType, amount, currency, occurredAt string) error {
	clientID, err := s.tc.Recall("client:" + name)
	if err != nil {
		return err
	}
	if err := s.tc.POST("/transactions", map[string]interface{}{
		"client_id":   clientID,
		"type":        txType,
		"amount":      amount,
		"currency":    currency,
		"occurred_at": occurredAt,
	}); err != nil {
		return err
	}
	if err := s.expectStatus(201); err != nil {
		return err
	}
	return s.readEvaluation()
}

func (s *complianceSteps) reevaluateLast(ctx context.Context) error {
	txID, err := s.tc.Recall("last_transaction")
	if err != nil {
		return err
	}
	if err := s.tc.POST("/transactions/"+txID+"/reevaluate", nil); err != nil {
		return err
	}
	if err := s.expectStatus(200); err != nil {
		return err
	}
	return s.readEvaluation()
}

func (s *complianceSteps) readEvaluation() error {
	var ev evaluation
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &ev); err != nil {
		return fmt.Errorf("decode evaluation: %w", err)
	}
	s.tc.Remember("last_transaction", ev.Transaction.ID)
	s.lastAlerts = ev.Alerts
	for _, a := range ev.Alerts {
		s.tc.Remember("alert:"+a.Rule, a.ID)
	}
	return nil
}

func (s *complianceSteps) evaluationRaisedCount(ctx context.Context, n int) error {
	if len(s.lastAlerts) != n {
		return fmt.Errorf("expected %d alerts, got %d: %+v", n, len(s.lastAlerts), s.lastAlerts)
	}
	return nil
}

func (s *complianceSteps) evaluationRaisedRule(ctx context.Context, rule string) error {
	for _, a := range s.lastAlerts {
		if a.Rule == rule {
			return nil
		}
	}
	return fmt.Errorf("no %q alert in %+v", rule, s.lastAlerts)
}

func (s *complianceSteps) markAlert(ctx context.Context, rule, status string) error {
	alertID, err := s.tc.Recall("alert:" + rule)
	if err != nil {
		return err
	}
	if err := s.tc.PATCH("/alerts/"+alertID+"/status", map[string]string{"status": status}); err != nil {
		return err
	}
	return s.expectStatus(200)
}

func (s *complianceSteps) alertsWithStatus(ctx context.Context, name string, n int, status string) error {
	clientID, err := s.tc.Recall("client:" + name)
	if err != nil {
		return err
	}
	q := url.Values{"client_id": {clientID}, "status": {status}}
	if err := s.tc.GET("/alerts?"+q.Encode(), nil); err != nil {
		return err
	}
	if err := s.expectStatus(200); err != nil {
		return err
	}
	var body struct {
		Alerts []alert `json:"alerts"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return err
	}
	if len(body.Alerts) != n {
		return fmt.Errorf("expected %d %s alerts, got %d", n, status, len(body.Alerts))
	}
	return nil
}

func (s *complianceSteps) requestReport(ctx context.Context, name, from, to string) error {
	clientID, err := s.tc.Recall("client:" + name)
	if err != nil {
		return err
	}
	q := url.Values{"from": {from}, "to": {to}}
	if err := s.tc.GET("/clients/"+clientID+"/report?"+q.Encode(), nil); err != nil {
		return err
	}
	return s.expectStatus(200)
}

func (s *complianceSteps) reportTotals(ctx context.Context, total, currency string, count int) error {
	var report struct {
		TotalsByCurrency map[string]string `json:"totals_by_currency"`
		TransactionCount int               `json:"transaction_count"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &report); err != nil {
		return err
	}
	if got := report.TotalsByCurrency[currency]; got != total {
		return fmt.Errorf("expected %s total %s, got %q", currency, total, got)
	}
	if report.TransactionCount != count {
		return fmt.Errorf("expected %d transactions, got %d", count, report.TransactionCount)
	}
	return nil
}

func (s *complianceSteps) expectStatus(expected int) error {
	if got := s.tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.GetLastResponseBody())
	}
	return nil
}

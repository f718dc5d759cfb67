package e2e

import (
	"github.com/cucumber/godog"

	"txwatch/e2e/steps/common"
	"txwatch/e2e/steps/compliance"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Clients, transactions and alerts
	compliance.RegisterSteps(ctx, tc)
}

package policy

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"txwatch/internal/compliance/models"
	dErrors "txwatch/pkg/domain-errors"
)

// File is the YAML layout of a policy document.
//
//	daily_limits:
//	  BRL: "20000"
//	high_risk_countries:
//	  - Panama
//	structuring_threshold: 3
type File struct {
	DailyLimits          map[string]string `yaml:"daily_limits"`
	HighRiskCountries    []string          `yaml:"high_risk_countries"`
	StructuringThreshold int               `yaml:"structuring_threshold"`
}

// LoadFile reads and validates a policy document. An empty path yields Default.
func LoadFile(path string) (RuleConfig, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleConfig{}, dErrors.Wrap(err, dErrors.CodeConfiguration, "read policy file")
	}
	return Parse(data)
}

// Parse decodes a policy document. Sections left out fall back to Default,
// so a file may override only the limits.
func Parse(data []byte) (RuleConfig, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return RuleConfig{}, dErrors.Wrap(err, dErrors.CodeConfiguration, "decode policy file")
	}

	cfg := Default()
	if file.DailyLimits != nil {
		cfg.DailyLimits = make(map[string]decimal.Decimal, len(file.DailyLimits))
		for currency, raw := range file.DailyLimits {
			limit, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil {
				return RuleConfig{}, dErrors.Newf(dErrors.CodeConfiguration, "daily limit for %s is not a number", currency)
			}
			cfg.DailyLimits[models.TrimCurrency(currency)] = limit
		}
	}
	if file.HighRiskCountries != nil {
		cfg.HighRiskCountries = file.HighRiskCountries
	}
	if file.StructuringThreshold != 0 {
		cfg.StructuringThreshold = file.StructuringThreshold
	}

	if err := cfg.Validate(); err != nil {
		return RuleConfig{}, err
	}
	return cfg, nil
}

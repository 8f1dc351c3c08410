package yamlfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	alerts "aquaculture-cloud/internal/alerts/domain"
	masterdata "aquaculture-cloud/internal/masterdata/domain"
)

//go:embed default_tables.yaml
var defaultTables []byte

// Tables holds the reference data loaded at process start.
type Tables struct {
	Parameters []masterdata.ParameterDefinition
	Rules      []alerts.AlertRule
}

type fileRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type fileParameter struct {
	ID      string    `yaml:"id"`
	Name    string    `yaml:"name"`
	Unit    string    `yaml:"unit"`
	Normal  fileRange `yaml:"normal"`
	Warning fileRange `yaml:"warning"`
	Danger  fileRange `yaml:"danger"`
}

type fileRule struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Parameter    string  `yaml:"parameter"`
	ThresholdMin float64 `yaml:"threshold_min"`
	ThresholdMax float64 `yaml:"threshold_max"`
	DedupWindow  string  `yaml:"dedup_window"`
	Remedial     string  `yaml:"remedial"`
	Active       *bool   `yaml:"active"`
}

type file struct {
	Parameters []fileParameter `yaml:"parameters"`
	AlertRules []fileRule      `yaml:"alert_rules"`
}

// Load reads tables from path, or the embedded defaults when path is empty.
func Load(path string) (Tables, error) {
	data := defaultTables
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Tables{}, err
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes and validates a tables document.
// Rules default to active; a rule may target a parameter without a definition.
func Parse(data []byte) (Tables, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Tables{}, fmt.Errorf("tables: %w", err)
	}

	var tables Tables
	seenParams := make(map[string]struct{}, len(doc.Parameters))
	for _, p := range doc.Parameters {
		def := masterdata.ParameterDefinition{
			ID:      p.ID,
			Name:    p.Name,
			Unit:    p.Unit,
			Normal:  masterdata.Range(p.Normal),
			Warning: masterdata.Range(p.Warning),
			Danger:  masterdata.Range(p.Danger),
		}
		if err := def.Validate(); err != nil {
			return Tables{}, fmt.Errorf("tables: %w", err)
		}
		if _, dup := seenParams[def.ID]; dup {
			return Tables{}, fmt.Errorf("tables: duplicate parameter %q", def.ID)
		}
		seenParams[def.ID] = struct{}{}
		tables.Parameters = append(tables.Parameters, def)
	}

	seenRules := make(map[string]struct{}, len(doc.AlertRules))
	for _, r := range doc.AlertRules {
		window, err := parseWindow(r.DedupWindow)
		if err != nil {
			return Tables{}, fmt.Errorf("tables: rule %q: %w", r.ID, err)
		}
		rule := alerts.AlertRule{
			ID:           r.ID,
			Name:         r.Name,
			ParameterID:  r.Parameter,
			ThresholdMin: r.ThresholdMin,
			ThresholdMax: r.ThresholdMax,
			DedupWindow:  window,
			Remedial:     r.Remedial,
			Active:       r.Active == nil || *r.Active,
		}
		if err := rule.Validate(); err != nil {
			return Tables{}, fmt.Errorf("tables: %w", err)
		}
		if _, dup := seenRules[rule.ID]; dup {
			return Tables{}, fmt.Errorf("tables: duplicate rule %q", rule.ID)
		}
		seenRules[rule.ID] = struct{}{}
		tables.Rules = append(tables.Rules, rule)
	}
	return tables, nil
}

func parseWindow(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	window, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if window < 0 {
		return 0, errors.New("negative dedup window")
	}
	return window, nil
}

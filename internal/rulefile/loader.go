package rulefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shivasurya/code-pathfinder/archrules/model"
	"gopkg.in/yaml.v3"
)

// LoadError records a single file's failure to parse. Loading continues
// past LoadErrors; they never abort a bulk load (spec §6, §7).
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// wireRuleDefinition mirrors RuleDefinition but keeps Enabled and MaxDepth
// as pointers so the decoder can distinguish "absent" (defaults: true, 100)
// from an explicit false or 0 — maxDepth 0 is a meaningful configuration
// (only the entry point itself may satisfy the sink), not an omission.
type wireRuleDefinition struct {
	ID          string                 `json:"id" yaml:"id"`
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description" yaml:"description"`
	Severity    string                 `json:"severity" yaml:"severity"`
	Category    string                 `json:"category" yaml:"category"`
	Enabled     *bool                  `json:"enabled" yaml:"enabled"`
	Detection   wireDetection          `json:"detection" yaml:"detection"`
	Remediation Remediation            `json:"remediation" yaml:"remediation"`
	Config      map[string]interface{} `json:"config" yaml:"config"`
}

type wireDetection struct {
	EntryPoints     MatchSpec           `json:"entryPoints" yaml:"entryPoints"`
	Sinks           MatchSpec           `json:"sinks" yaml:"sinks"`
	PathConstraints wirePathConstraints `json:"pathConstraints" yaml:"pathConstraints"`
}

type wirePathConstraints struct {
	MustContain    []string `json:"mustContain" yaml:"mustContain"`
	MustNotContain []string `json:"mustNotContain" yaml:"mustNotContain"`
	MaxDepth       *int     `json:"maxDepth" yaml:"maxDepth"`
}

func (w wireRuleDefinition) normalize() RuleDefinition {
	enabled := true
	if w.Enabled != nil {
		enabled = *w.Enabled
	}
	maxDepth := 100
	if w.Detection.PathConstraints.MaxDepth != nil {
		maxDepth = *w.Detection.PathConstraints.MaxDepth
	}
	rd := RuleDefinition{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Severity:    model.ParseSeverity(w.Severity),
		Category:    normalizeCategory(w.Category),
		Enabled:     enabled,
		Detection: Detection{
			EntryPoints: w.Detection.EntryPoints,
			Sinks:       w.Detection.Sinks,
			PathConstraints: PathConstraints{
				MustContain:    w.Detection.PathConstraints.MustContain,
				MustNotContain: w.Detection.PathConstraints.MustNotContain,
				MaxDepth:       maxDepth,
			},
		},
		Remediation: w.Remediation,
		Config:      w.Config,
	}
	return rd
}

func normalizeCategory(raw string) Category {
	if strings.TrimSpace(raw) == "" {
		return CategoryCustom
	}
	norm := strings.ToUpper(strings.TrimSpace(raw))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	switch Category(norm) {
	case CategoryTransactionSafety, CategoryAsyncSafety, CategoryRetrySafety,
		CategoryCircularDependency, CategoryLayeredArchitecture, CategorySecurity,
		CategoryPerformance, CategoryCustom:
		return Category(norm)
	default:
		return Category(norm) // free enum: pass unknown categories through
	}
}

// LoadFile parses one JSON or YAML rule file (selected by extension; any
// extension other than .yaml/.yml is treated as JSON).
func LoadFile(path string) (RuleDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleDefinition{}, fmt.Errorf("read rule file: %w", err)
	}

	var w wireRuleDefinition
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, &w); err != nil {
			return RuleDefinition{}, fmt.Errorf("parse yaml rule: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &w); err != nil {
			return RuleDefinition{}, fmt.Errorf("parse json rule: %w", err)
		}
	}

	return w.normalize(), nil
}

// LoadDir parses every .json/.yaml/.yml file directly under dir (not
// recursive). Per-file errors are collected and returned alongside
// whatever rules did parse successfully; a malformed rule file never
// aborts the bulk load (spec §7, "Configuration error").
func LoadDir(dir string) ([]RuleDefinition, []*LoadError) {
	var rules []RuleDefinition
	var errs []*LoadError

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []*LoadError{{Path: dir, Err: err}}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rd, err := LoadFile(path)
		if err != nil {
			errs = append(errs, &LoadError{Path: path, Err: err})
			continue
		}
		rules = append(rules, rd)
	}

	return rules, errs
}

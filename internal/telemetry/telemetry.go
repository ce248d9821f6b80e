// Package telemetry reports anonymous, opt-out usage events: which
// operations ran and how they ended, never file paths, source text, or
// rule content. Grounded 1:1 on the teacher's analytics/usage.go
// (posthog-go client, per-machine anonymous UUID persisted via a
// godotenv-managed dotfile, runtime/os/arch metadata), event names renamed
// from scan/CI/MCP to this engine's analyze/rules operations.
package telemetry

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

// Event names for this engine's operations.
const (
	AnalyzeStarted   = "archrules:analyze_started"
	AnalyzeCompleted = "archrules:analyze_completed"
	AnalyzeFailed    = "archrules:analyze_failed"
	RulesListed      = "archrules:rules_listed"
)

// Reporter sends anonymous usage events, or does nothing when disabled or
// unconfigured.
type Reporter struct {
	publicKey string
	version   string
	enabled   bool
	distinct  string
}

// NewReporter creates a Reporter. disabled honors an opt-out flag/env var;
// publicKey empty also disables reporting (matches the teacher's
// "enableMetrics && PublicKey != \"\"" gate).
func NewReporter(publicKey, version string, disabled bool) *Reporter {
	return &Reporter{publicKey: publicKey, version: version, enabled: !disabled}
}

// LoadAnonymousID loads (creating if absent) a per-machine anonymous UUID
// from ~/.archrules/.env, grounded on the teacher's createEnvFile/LoadEnvFile
// pair.
func (r *Reporter) LoadAnonymousID() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	envFile := filepath.Join(home, ".archrules", ".env")

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(filepath.Dir(envFile), os.ModePerm); mkErr == nil {
			_ = godotenv.Write(map[string]string{"uuid": uuid.New().String()}, envFile)
		}
	}

	env, err := godotenv.Read(envFile)
	if err != nil {
		return ""
	}
	r.distinct = env["uuid"]
	return r.distinct
}

// ReportEvent sends event with no additional properties.
func (r *Reporter) ReportEvent(event string) {
	r.ReportEventWithProperties(event, nil)
}

// ReportEventWithProperties sends event with properties, which must never
// contain file paths, source text, or rule content — only counts and
// durations.
func (r *Reporter) ReportEventWithProperties(event string, properties map[string]interface{}) {
	if !r.enabled || r.publicKey == "" {
		return
	}

	disableGeoIP := false
	client, err := posthog.NewWithConfig(r.publicKey, posthog.Config{
		Endpoint:     "https://us.i.posthog.com",
		DisableGeoIP: &disableGeoIP,
	})
	if err != nil {
		return
	}
	defer client.Close()

	props := posthog.NewProperties()
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("go_version", runtime.Version())
	if r.version != "" {
		props.Set("archrules_version", r.version)
	}
	for k, v := range properties {
		props.Set(k, v)
	}

	_ = client.Enqueue(posthog.Capture{
		DistinctId: r.distinct,
		Event:      event,
		Properties: props,
	})
}

// Package orchestrator wires the Source Model, Call Graph, Package
// Dependency Graph, and Rule Repository together and drives the Rule
// Evaluation Engine over every loaded rule, aggregating per-rule Results
// into a single run-level Report.
//
// Grounded on the teacher's cmd/scan.go wiring order (parse -> build graph
// -> load rules -> execute -> aggregate -> format) and on
// graph/callgraph/builder/builder.go's bounded worker-pool fan-out
// (getOptimalWorkerCount, channel + sync.WaitGroup + sync.Mutex job
// dispatch), generalized here from "one worker per source file" to "one
// worker per rule evaluation".
package orchestrator

import (
	"context"
	"os"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shivasurya/code-pathfinder/archrules/internal/callgraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/evaluator"
	"github.com/shivasurya/code-pathfinder/archrules/internal/packagegraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
)

// minWorkers, maxWorkersDefault and maxWorkersOverride bound the worker pool regardless of CPU
// count or env override, mirroring the teacher's getOptimalWorkerCount
// bounds (2-16, 32 under an explicit override).
const (
	minWorkers          = 2
	maxWorkersDefault   = 16
	maxWorkersOverride  = 32
	workerCountEnvVar   = "ARCHRULES_MAX_WORKERS"
	defaultPerRuleTimeout = 30 * time.Second
)

// getOptimalWorkerCount mirrors the teacher's worker-sizing algorithm: 75%
// of available CPUs, clamped to [2,16], overridable via an env var capped
// at 32 for safety.
func getOptimalWorkerCount() int {
	if raw := os.Getenv(workerCountEnvVar); raw != "" {
		if count, err := strconv.Atoi(raw); err == nil && count > 0 {
			if count > maxWorkersOverride {
				count = maxWorkersOverride
			}
			return count
		}
	}

	workers := int(float64(runtime.NumCPU()) * 0.75)
	if workers < minWorkers {
		workers = minWorkers
	}
	if workers > maxWorkersDefault {
		workers = maxWorkersDefault
	}
	return workers
}

// Options configures a run.
type Options struct {
	// MaxWorkers overrides the computed worker count when > 0.
	MaxWorkers int
	// PerRuleTimeout bounds a single rule's evaluation; zero uses the
	// default of 30s, grounded on the teacher's dsl/loader.go external-rule
	// execution timeout.
	PerRuleTimeout time.Duration
	// Clock is injectable for deterministic tests; defaults to time.Now.
	Clock func() time.Time
}

func (o Options) workerCount() int {
	if o.MaxWorkers > 0 {
		return o.MaxWorkers
	}
	return getOptimalWorkerCount()
}

func (o Options) perRuleTimeout() time.Duration {
	if o.PerRuleTimeout > 0 {
		return o.PerRuleTimeout
	}
	return defaultPerRuleTimeout
}

func (o Options) clock() func() time.Time {
	if o.Clock != nil {
		return o.Clock
	}
	return time.Now
}

// Stats summarizes what a run analyzed, independent of any violations it
// found.
type Stats struct {
	Files         int
	Types         int
	Methods       int
	RulesExecuted int
	DurationMs    int64
}

// Report is the orchestrator's complete output: every rule's Result, in
// input rule order, plus run-level stats and the flattened violation list
// every report formatter consumes.
type Report struct {
	RunID      string
	Results    []evaluator.Result
	Violations []model.Violation
	Stats      Stats
	HadErrors  bool
}

// Run evaluates every rule in rules against the frozen model/graphs using
// registry for dispatch. Rules are evaluated concurrently across a bounded
// worker pool, but Results are returned in the same order as rules (spec
// §5: "across rules, orchestration order equals input rule order";
// parallelism must not disturb it). A canceled ctx causes every rule whose
// evaluation has not yet started to short-circuit to StatusSkipped;
// in-flight evaluations still honor their own per-rule deadline.
func Run(ctx context.Context, sm *model.SourceModel, cg *callgraph.Graph, pg *packagegraph.Graph, rules []rulefile.RuleDefinition, registry *evaluator.Registry, opts Options) Report {
	start := opts.clock()()

	results := make([]evaluator.Result, len(rules))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := opts.workerCount()
	if workers > len(rules) {
		workers = len(rules)
	}
	if workers < 1 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = evaluateOne(ctx, sm, cg, pg, rules[idx], registry, opts)
			}
		}()
	}

	for i := range rules {
		if ctx.Err() != nil {
			results[i] = evaluator.Result{RuleID: rules[i].ID, Status: evaluator.StatusSkipped}
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report := aggregate(results)
	report.RunID = uuid.NewString()
	report.Stats = Stats{
		Files:         countFiles(sm),
		Types:         len(sm.AllTypes()),
		Methods:       len(sm.AllMethods()),
		RulesExecuted: len(rules),
		DurationMs:    opts.clock()().Sub(start).Milliseconds(),
	}
	return report
}

// evaluateOne builds the per-rule deadline context and runs registry's
// dispatch-and-evaluate, short-circuiting to StatusSkipped if the global
// context is already canceled.
func evaluateOne(ctx context.Context, sm *model.SourceModel, cg *callgraph.Graph, pg *packagegraph.Graph, rule rulefile.RuleDefinition, registry *evaluator.Registry, opts Options) evaluator.Result {
	if ctx.Err() != nil {
		return evaluator.Result{RuleID: rule.ID, Status: evaluator.StatusSkipped}
	}

	deadline := opts.clock()().Add(opts.perRuleTimeout())
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	evalCtx := evaluator.Context{
		Rule:         rule,
		SourceModel:  sm,
		CallGraph:    cg,
		PackageGraph: pg,
		Deadline:     deadline,
	}
	return registry.EvaluateRule(evalCtx)
}

// aggregate flattens per-rule Results into a Report, preserving each
// rule's own violation-discovery order (spec §8: "within a rule, violations
// are discovered and returned in DFS order"). The flattened list is
// deduplicated by Violation.DedupKey — (ruleId, location, context-hash) —
// keeping the first occurrence; per-rule Results keep their raw violations
// untouched.
func aggregate(results []evaluator.Result) Report {
	report := Report{Results: results}
	seen := make(map[string]bool)
	for _, r := range results {
		for _, v := range r.Violations {
			if key := v.DedupKey(); !seen[key] {
				seen[key] = true
				report.Violations = append(report.Violations, v)
			}
		}
		if r.Status == evaluator.StatusError {
			report.HadErrors = true
		}
	}
	return report
}

func countFiles(sm *model.SourceModel) int {
	seen := make(map[string]struct{})
	for _, m := range sm.AllMethods() {
		seen[m.Location.FilePath] = struct{}{}
	}
	return len(seen)
}

// SortedByID returns rules in a deterministic rule-ID order, for callers
// that load rules from a directory (rulefile.LoadDir's order depends on
// filesystem iteration) and want reproducible evaluation order without
// relying on the loader itself. Run never reorders its input rule slice.
func SortedByID(rules []rulefile.RuleDefinition) []rulefile.RuleDefinition {
	sorted := append([]rulefile.RuleDefinition{}, rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

package evaluator

import (
	"testing"
	"time"

	"github.com/shivasurya/code-pathfinder/archrules/internal/callgraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/packagegraph"
	"github.com/shivasurya/code-pathfinder/archrules/internal/rulefile"
	"github.com/shivasurya/code-pathfinder/archrules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func method(fqn, simpleName, owner string, annotations ...string) *model.Method {
	m := &model.Method{Fqn: fqn, SimpleName: simpleName, ContainingTypeFqn: owner}
	for _, a := range annotations {
		m.Annotations = append(m.Annotations, model.AnnotationRef{SimpleName: a, Fqn: a})
	}
	return m
}

// buildChainContext assembles a minimal frozen SourceModel + Call Graph from
// a chain of method FQNs (edges[i] -> edges[i+1]), marking every method in
// methods as an application method. Callers leave the final edge FQN out of
// methods so that it models the external library sink (e.g.
// RestTemplate#getForObject).
func buildChainContext(t *testing.T, methods []*model.Method, edges []string, rule rulefile.RuleDefinition) Context {
	t.Helper()
	methodMap := make(map[string]*model.Method, len(methods))
	typeMap := make(map[string]*model.Type)
	for _, m := range methods {
		methodMap[m.Fqn] = m
		if _, ok := typeMap[m.ContainingTypeFqn]; !ok {
			typeMap[m.ContainingTypeFqn] = &model.Type{Fqn: m.ContainingTypeFqn, SimpleName: m.ContainingTypeFqn, Package: "pkg"}
		}
	}
	sm := model.NewFrozenSourceModel(typeMap, methodMap, nil, nil, nil)

	gb := callgraph.NewBuilder()
	for _, m := range methods {
		gb.MarkApplicationMethod(m.Fqn)
	}
	for i := 0; i < len(edges)-1; i++ {
		gb.AddEdge(model.CallEdge{CallerFqn: edges[i], CalleeFqn: edges[i+1], ResolvedCalleeFqn: edges[i+1], CallType: model.CallDirect})
	}
	graph := gb.Freeze()

	pgb := packagegraph.NewBuilder()
	pg := pgb.Freeze()

	return Context{Rule: rule, SourceModel: sm, CallGraph: graph, PackageGraph: pg}
}

func txBoundaryRule(maxDepth int) rulefile.RuleDefinition {
	return rulefile.RuleDefinition{
		ID:       "TX-BOUNDARY-001",
		Name:     "No remote calls in a transaction",
		Severity: model.SeverityError,
		Category: rulefile.CategoryTransactionSafety,
		Enabled:  true,
		Detection: rulefile.Detection{
			EntryPoints:     rulefile.MatchSpec{Annotations: []string{"Transactional"}},
			Sinks:           rulefile.MatchSpec{Types: []string{"RestTemplate"}},
			PathConstraints: rulefile.PathConstraints{MaxDepth: maxDepth},
		},
	}
}

// S1: direct transactional -> remote call.
func TestTransactionBoundary_S1_Direct(t *testing.T) {
	methods := []*model.Method{
		method("TxService#txMethod()", "txMethod", "TxService", "Transactional"),
	}
	ctx := buildChainContext(t, methods, []string{"TxService#txMethod()", "RestTemplate#getForObject()"}, txBoundaryRule(30))

	eval := transactionBoundaryEvaluator()
	require.True(t, eval.Supports(ctx.Rule))
	result := eval.Evaluate(ctx)

	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, "TX-BOUNDARY-001", v.RuleID)
	assert.Equal(t, "TxService#txMethod()", v.CallChain[0])
	assert.Equal(t, "RestTemplate#getForObject()", v.CallChain[len(v.CallChain)-1])
}

// S2: transactional entry calls an interface method, resolved via virtual
// dispatch expansion before the evaluator ever runs.
func TestTransactionBoundary_S2_Interface(t *testing.T) {
	methods := []*model.Method{
		method("Caller#doTx()", "doTx", "Caller", "Transactional"),
		method("Iface#remote()", "remote", "Iface"),
		method("Impl#remote()", "remote", "Impl"),
		method("RestTemplate#getForObject()", "getForObject", "RestTemplate"),
	}
	methodMap := map[string]*model.Method{}
	for _, m := range methods {
		methodMap[m.Fqn] = m
	}
	typeMap := map[string]*model.Type{
		"Caller":       {Fqn: "Caller", SimpleName: "Caller", Package: "pkg"},
		"Iface":        {Fqn: "Iface", SimpleName: "Iface", Package: "pkg", Kind: model.KindInterface},
		"Impl":         {Fqn: "Impl", SimpleName: "Impl", Package: "pkg", Interfaces: []string{"Iface"}},
		"RestTemplate": {Fqn: "RestTemplate", SimpleName: "RestTemplate", Package: "pkg"},
	}
	sm := model.NewFrozenSourceModel(typeMap, methodMap, nil, nil, nil)

	gb := callgraph.NewBuilder()
	for _, m := range methods {
		gb.MarkApplicationMethod(m.Fqn)
	}
	gb.AddEdge(model.CallEdge{CallerFqn: "Caller#doTx()", CalleeFqn: "Iface#remote()", ResolvedCalleeFqn: "Iface#remote()", CallType: model.CallInterface})
	gb.AddEdge(model.CallEdge{CallerFqn: "Impl#remote()", CalleeFqn: "RestTemplate#getForObject()", ResolvedCalleeFqn: "RestTemplate#getForObject()", CallType: model.CallDirect})
	gb.ExpandInterfaceDispatch(sm)
	graph := gb.Freeze()

	pg := packagegraph.NewBuilder().Freeze()
	ctx := Context{Rule: txBoundaryRule(30), SourceModel: sm, CallGraph: graph, PackageGraph: pg}

	eval := transactionBoundaryEvaluator()
	result := eval.Evaluate(ctx)

	require.Len(t, result.Violations, 1)
	chain := result.Violations[0].CallChain
	assert.Contains(t, chain, "Impl#remote()")
	assert.GreaterOrEqual(t, len(chain), 3)
	assert.LessOrEqual(t, len(chain), 4)
}

// S3: deep chain respects maxDepth.
func TestTransactionBoundary_S3_MaxDepth(t *testing.T) {
	methods := []*model.Method{
		method("A#x()", "x", "A", "Transactional"),
		method("B#y()", "y", "B"),
		method("C#z()", "z", "C"),
		method("D#w()", "w", "D"),
	}
	edges := []string{"A#x()", "B#y()", "C#z()", "D#w()", "RestTemplate#post()"}

	ctx3 := buildChainContext(t, methods, edges, txBoundaryRule(3))
	result3 := transactionBoundaryEvaluator().Evaluate(ctx3)
	assert.Empty(t, result3.Violations, "maxDepth=3 should not reach the sink 4 edges away")

	ctx4 := buildChainContext(t, methods, edges, txBoundaryRule(4))
	result4 := transactionBoundaryEvaluator().Evaluate(ctx4)
	require.Len(t, result4.Violations, 1, "maxDepth=4 should reach the sink exactly")
}

func retryRule() rulefile.RuleDefinition {
	return rulefile.RuleDefinition{
		ID:       "REMOTE-RETRY-001",
		Name:     "Non-idempotent call inside retry",
		Severity: model.SeverityError,
		Category: rulefile.CategoryRetrySafety,
		Enabled:  true,
		Detection: rulefile.Detection{
			EntryPoints:     rulefile.MatchSpec{Annotations: []string{"Retryable"}},
			Sinks:           rulefile.MatchSpec{MethodPatterns: []string{"RestTemplate#post*"}},
			PathConstraints: rulefile.PathConstraints{MaxDepth: 10},
		},
	}
}

// S5: retry on non-idempotent call; sibling idempotent call produces none.
func TestRetrySafety_S5(t *testing.T) {
	methods := []*model.Method{
		method("M#createPayment()", "createPayment", "M", "Retryable"),
		method("M#getStatus()", "getStatus", "M", "Retryable"),
	}
	methodMap := map[string]*model.Method{}
	for _, m := range methods {
		methodMap[m.Fqn] = m
	}
	typeMap := map[string]*model.Type{
		"M":            {Fqn: "M", SimpleName: "M", Package: "pkg"},
		"RestTemplate": {Fqn: "RestTemplate", SimpleName: "RestTemplate", Package: "pkg"},
	}
	sm := model.NewFrozenSourceModel(typeMap, methodMap, nil, nil, nil)

	gb := callgraph.NewBuilder()
	for _, m := range methods {
		gb.MarkApplicationMethod(m.Fqn)
	}
	gb.AddEdge(model.CallEdge{CallerFqn: "M#createPayment()", CalleeFqn: "RestTemplate#postForObject()", ResolvedCalleeFqn: "RestTemplate#postForObject()"})
	gb.AddEdge(model.CallEdge{CallerFqn: "M#getStatus()", CalleeFqn: "RestTemplate#getForObject()", ResolvedCalleeFqn: "RestTemplate#getForObject()"})
	graph := gb.Freeze()
	pg := packagegraph.NewBuilder().Freeze()

	ctx := Context{Rule: retryRule(), SourceModel: sm, CallGraph: graph, PackageGraph: pg}
	result := retrySafetyEvaluator().Evaluate(ctx)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "M#createPayment()", result.Violations[0].CallChain[0])
}

func threadRule() rulefile.RuleDefinition {
	return rulefile.RuleDefinition{
		ID:       "THREAD-MGMT-001",
		Name:     "Manual thread creation",
		Severity: model.SeverityWarn,
		Enabled:  true,
		Detection: rulefile.Detection{
			Sinks: rulefile.MatchSpec{Types: []string{"Thread"}, MethodPatterns: []string{"start", "<init>"}},
		},
	}
}

// S6: thread creation is a single-edge check producing a one-element chain
// located at the invocation line, not the method declaration.
func TestThreadManagement_S6(t *testing.T) {
	methods := []*model.Method{
		method("Worker#run()", "run", "Worker"),
	}
	methodMap := map[string]*model.Method{"Worker#run()": methods[0]}
	typeMap := map[string]*model.Type{"Worker": {Fqn: "Worker", SimpleName: "Worker", Package: "pkg"}}
	sm := model.NewFrozenSourceModel(typeMap, methodMap, nil, nil, nil)

	gb := callgraph.NewBuilder()
	gb.MarkApplicationMethod("Worker#run()")
	callSite := model.Location{FilePath: "Worker.java", StartLine: 42, StartCol: 9}
	gb.AddEdge(model.CallEdge{CallerFqn: "Worker#run()", CalleeFqn: "Thread#start()", CallType: model.CallVirtual, Location: callSite})
	ctx := Context{Rule: threadRule(), SourceModel: sm, CallGraph: gb.Freeze(), PackageGraph: packagegraph.NewBuilder().Freeze()}

	result := threadManagementEvaluator().Evaluate(ctx)

	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, []string{"Worker#run()"}, v.CallChain)
	assert.Equal(t, callSite, v.Location)
}

func TestThreadManagement_OneViolationPerCallSite(t *testing.T) {
	rule := threadRule()
	rule.Detection.PathConstraints.MaxDepth = 50
	methods := []*model.Method{
		method("A#a()", "a", "A"),
		method("B#b()", "b", "B"),
	}
	ctx := buildChainContext(t, methods, []string{"A#a()", "B#b()", "Thread#start()"}, rule)
	result := threadManagementEvaluator().Evaluate(ctx)

	// Only direct edges count: B#b() calls Thread#start() directly and is
	// flagged, but A#a()'s two-edge path to the same sink is not, no matter
	// what maxDepth the rule file configured.
	require.Len(t, result.Violations, 1)
	assert.Equal(t, []string{"B#b()"}, result.Violations[0].CallChain)
}

func TestChainEvaluator_EmptyEntryOrSinkPredicate(t *testing.T) {
	methods := []*model.Method{
		method("TxService#txMethod()", "txMethod", "TxService", "Transactional"),
		method("RestTemplate#getForObject()", "getForObject", "RestTemplate"),
	}
	edges := []string{"TxService#txMethod()", "RestTemplate#getForObject()"}

	noEntry := txBoundaryRule(30)
	noEntry.Detection.EntryPoints = rulefile.MatchSpec{}
	ctx1 := buildChainContext(t, methods, edges, noEntry)
	assert.Empty(t, transactionBoundaryEvaluator().Evaluate(ctx1).Violations)

	noSink := txBoundaryRule(30)
	noSink.Detection.Sinks = rulefile.MatchSpec{}
	ctx2 := buildChainContext(t, methods, edges, noSink)
	assert.Empty(t, transactionBoundaryEvaluator().Evaluate(ctx2).Violations)
}

func TestChainEvaluator_DeadlineExpired(t *testing.T) {
	methods := []*model.Method{
		method("TxService#txMethod()", "txMethod", "TxService", "Transactional"),
		method("RestTemplate#getForObject()", "getForObject", "RestTemplate"),
	}
	ctx := buildChainContext(t, methods, []string{"TxService#txMethod()", "RestTemplate#getForObject()"}, txBoundaryRule(30))
	ctx.Deadline = time.Now().Add(-time.Second)

	result := transactionBoundaryEvaluator().Evaluate(ctx)
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "timeout", result.ErrorMessage)
}

package model

// RelationshipKind enumerates the typed edges the Source Model records
// alongside the Call Graph. The Call Graph remains authoritative for call
// queries; these relationships back the Package Dependency Graph and
// ad-hoc lookups (e.g. USES_TYPE for field/parameter/return types).
type RelationshipKind string

const (
	RelContains      RelationshipKind = "CONTAINS"
	RelExtends       RelationshipKind = "EXTENDS"
	RelImplements    RelationshipKind = "IMPLEMENTS"
	RelUsesType      RelationshipKind = "USES_TYPE"
	RelUsesField     RelationshipKind = "USES_FIELD"
	RelAnnotatedWith RelationshipKind = "ANNOTATED_WITH"
	RelThrows        RelationshipKind = "THROWS"
	RelCalls         RelationshipKind = "CALLS"
)

// Relationship is a typed fact between two FQNs (type, method, or field
// FQNs depending on Kind).
type Relationship struct {
	Kind   RelationshipKind
	Source string
	Target string
}

// CallKind enumerates how a CallEdge's call site invokes its callee.
type CallKind string

const (
	CallDirect      CallKind = "direct"
	CallVirtual     CallKind = "virtual"
	CallStatic      CallKind = "static"
	CallConstructor CallKind = "constructor"
	CallInterface   CallKind = "interface"
	CallSuper       CallKind = "super"
	CallLambda      CallKind = "lambda"
	CallMethodRef   CallKind = "method-ref"
)

// CallEdge is a single caller->callee fact, published by the Call Graph
// builder. ResolvedCalleeFqn is non-empty iff the callee was bound to a
// concrete Method in the model.
type CallEdge struct {
	CallerFqn         string
	CalleeFqn         string
	ResolvedCalleeFqn string
	CallType          CallKind
	Location          Location
}

// EffectiveCallee returns ResolvedCalleeFqn when present, otherwise the
// declared CalleeFqn, per the spec's "effective callee" definition.
func (e CallEdge) EffectiveCallee() string {
	if e.ResolvedCalleeFqn != "" {
		return e.ResolvedCalleeFqn
	}
	return e.CalleeFqn
}

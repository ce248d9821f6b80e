package model

// TypeRef is a reference to a type as used in a signature, field, or
// supertype list. Fqn may equal SimpleName when the parser adapter could not
// resolve the reference against the import table; callers must not assume
// Fqn is fully qualified.
type TypeRef struct {
	SimpleName  string
	Fqn         string
	IsPrimitive bool
	IsArray     bool
	IsGeneric   bool
	TypeArgs    []TypeRef
}

// Resolved reports whether Fqn differs from SimpleName, which is this
// engine's signal that import-table/reflective resolution succeeded.
func (t TypeRef) Resolved() bool {
	return t.Fqn != "" && t.Fqn != t.SimpleName
}

// AnnotationRef is a value-typed reference to an annotation/attribute usage.
// Matching against a queried name must honor both SimpleName and Fqn per the
// Source Model's annotation-lookup invariant.
type AnnotationRef struct {
	SimpleName string
	Fqn        string
	Attributes map[string]AnnotationValue
}

// Matches reports whether name equals either the simple or fully-qualified
// form of this annotation reference.
func (a AnnotationRef) Matches(name string) bool {
	return name != "" && (name == a.SimpleName || name == a.Fqn)
}

// AnnotationValue is a tagged union over the heterogeneous attribute values
// an annotation expression can carry.
type AnnotationValue struct {
	Kind   AnnotationValueKind
	String string
	Int    int64
	Bool   bool
	List   []AnnotationValue
	Map    map[string]AnnotationValue
}

// AnnotationValueKind discriminates AnnotationValue's active field.
type AnnotationValueKind int

const (
	AnnotationValueString AnnotationValueKind = iota
	AnnotationValueInt
	AnnotationValueBool
	AnnotationValueList
	AnnotationValueMap
)

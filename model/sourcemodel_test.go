package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestModel() *SourceModel {
	types := map[string]*Type{
		"com.acme.TxService": {
			Fqn: "com.acme.TxService", SimpleName: "TxService", Package: "com.acme",
			Kind: KindClass,
		},
		"com.acme.Iface": {
			Fqn: "com.acme.Iface", SimpleName: "Iface", Package: "com.acme",
			Kind: KindInterface,
		},
		"com.acme.Impl": {
			Fqn: "com.acme.Impl", SimpleName: "Impl", Package: "com.acme",
			Kind: KindClass, Interfaces: []string{"com.acme.Iface"},
		},
	}
	methods := map[string]*Method{
		"com.acme.TxService#txMethod()": {
			Fqn: "com.acme.TxService#txMethod()", SimpleName: "txMethod",
			ContainingTypeFqn: "com.acme.TxService",
			Annotations:       []AnnotationRef{{SimpleName: "Transactional"}},
		},
	}
	fields := map[string]*Field{}
	rels := []Relationship{
		{Kind: RelImplements, Source: "com.acme.Impl", Target: "com.acme.Iface"},
	}
	return NewFrozenSourceModel(types, methods, fields, rels, nil)
}

func TestSourceModel_Lookups(t *testing.T) {
	sm := buildTestModel()
	require.True(t, sm.IsFrozen())

	t.Run("type lookup", func(t *testing.T) {
		tp, ok := sm.Type("com.acme.TxService")
		require.True(t, ok)
		assert.Equal(t, "TxService", tp.SimpleName)
	})

	t.Run("method lookup miss", func(t *testing.T) {
		_, ok := sm.Method("com.acme.TxService#missing()")
		assert.False(t, ok)
	})

	t.Run("methods by annotation, simple name", func(t *testing.T) {
		ms := sm.MethodsByAnnotation("Transactional")
		require.Len(t, ms, 1)
		assert.Equal(t, "txMethod", ms[0].SimpleName)
	})

	t.Run("types in package", func(t *testing.T) {
		assert.Len(t, sm.TypesInPackage("com.acme"), 3)
		assert.Empty(t, sm.TypesInPackage("com.other"))
	})
}

func TestSourceModel_IsSubtype(t *testing.T) {
	sm := buildTestModel()

	assert.True(t, sm.IsSubtype("com.acme.Impl", "com.acme.Impl"), "a type is its own subtype")
	assert.True(t, sm.IsSubtype("com.acme.Impl", "com.acme.Iface"))
	assert.False(t, sm.IsSubtype("com.acme.TxService", "com.acme.Iface"))
	assert.False(t, sm.IsSubtype("com.acme.Unknown", "com.acme.Iface"))
}

func TestSourceModel_DirectSubtypes(t *testing.T) {
	sm := buildTestModel()
	assert.Equal(t, []string{"com.acme.Impl"}, sm.DirectSubtypes("com.acme.Iface"))
	assert.Empty(t, sm.DirectSubtypes("com.acme.Unknown"))
}

func TestSourceModel_Stats(t *testing.T) {
	sm := buildTestModel()
	stats := sm.Stats()
	assert.Equal(t, 3, stats.Types)
	assert.Equal(t, 1, stats.Methods)
	assert.Equal(t, 0, stats.Fields)
}

func TestSourceModel_RelationshipIndices(t *testing.T) {
	sm := buildTestModel()
	assert.Len(t, sm.RelationshipsFrom("com.acme.Impl"), 1)
	assert.Len(t, sm.RelationshipsTo("com.acme.Iface"), 1)
	assert.Empty(t, sm.RelationshipsFrom("com.acme.TxService"))
}

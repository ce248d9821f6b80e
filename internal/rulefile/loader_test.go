package rulefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shivasurya/code-pathfinder/archrules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rule.json", `{
		"id": "TX-BOUNDARY-001",
		"name": "No remote calls in a transaction",
		"detection": {
			"entryPoints": {"annotations": ["Transactional"]},
			"sinks": {"types": ["RestTemplate"]}
		}
	}`)

	rd, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, rd.Enabled, "missing enabled defaults to true")
	assert.Equal(t, model.SeverityError, rd.Severity, "missing severity defaults to ERROR")
	assert.Equal(t, CategoryCustom, rd.Category, "missing category defaults to CUSTOM")
	assert.Equal(t, 100, rd.Detection.PathConstraints.MaxDepth, "missing maxDepth defaults to 100")
	assert.Empty(t, rd.Detection.PathConstraints.MustContain)
	assert.Empty(t, rd.Detection.PathConstraints.MustNotContain)
}

func TestLoadFile_ExplicitValuesAreCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rule.json", `{
		"id": "R1", "name": "x",
		"severity": "blocker",
		"category": "circular-dependency",
		"enabled": false,
		"detection": {"pathConstraints": {"maxDepth": 5}}
	}`)

	rd, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, model.SeverityBlocker, rd.Severity)
	assert.Equal(t, CategoryCircularDependency, rd.Category, "hyphens in category equal underscores")
	assert.False(t, rd.Enabled)
	assert.Equal(t, 5, rd.Detection.PathConstraints.MaxDepth)
}

func TestLoadFile_ExplicitZeroMaxDepth(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rule.json", `{
		"id": "R-ZERO", "name": "x",
		"detection": {"pathConstraints": {"maxDepth": 0}}
	}`)

	rd, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, rd.Detection.PathConstraints.MaxDepth,
		"an explicit 0 is kept, only an absent maxDepth defaults to 100")
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rule.yaml", "id: R2\nname: yaml rule\nseverity: WARN\n")

	rd, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "R2", rd.ID)
	assert.Equal(t, model.SeverityWarn, rd.Severity)
}

func TestLoadFile_UnknownTopLevelKeysIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rule.json", `{"id": "R3", "name": "x", "futureField": {"whatever": true}}`)

	rd, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "R3", rd.ID)
}

func TestLoadDir_CollectsErrorsWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"id": "GOOD", "name": "ok"}`)
	writeFile(t, dir, "bad.json", `{not valid json`)
	writeFile(t, dir, "ignored.txt", `not a rule file`)

	rules, errs := LoadDir(dir)
	require.Len(t, rules, 1)
	assert.Equal(t, "GOOD", rules[0].ID)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Path, "bad.json")
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	rules, errs := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Empty(t, rules)
	require.Len(t, errs, 1)
}

package alias

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Alias Resolver:
// - Load() extracts compilerOptions.paths preserving file order
// - Load() keeps only the first replacement and strips one trailing "*"
// - Load() accepts comments and trailing commas
// - Load() returns an empty mapping and *LoadError for missing, malformed
//   or unconfigured tsconfig
// - Load() returns an empty mapping without error when paths is absent
// - Resolve() replaces the first matching prefix in table order
// - Resolve() is the identity for unmatched specifiers

const sampleTsconfig = `{
  // Angular workspace
  "compilerOptions": {
    "baseUrl": "./",
    /* aliases */
    "paths": {
      "@app/*": ["src/app/*", "src/fallback/*"],
      "@env": ["src/environments/environment"],
      "@shared/*": ["src/app/shared/*"],
    },
  },
}
`

func writeTsconfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(content), 0644))
	return dir
}

func TestLoad_ExtractsPathsInOrder(t *testing.T) {
	dir := writeTsconfig(t, sampleTsconfig)

	m, err := Load(dir, "tsconfig.json")

	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Prefix: "@app/", Replacement: "src/app/"},
		{Prefix: "@env", Replacement: "src/environments/environment"},
		{Prefix: "@shared/", Replacement: "src/app/shared/"},
	}, m.Entries())
}

func TestLoad_NoPathsTable(t *testing.T) {
	dir := writeTsconfig(t, `{"compilerOptions": {"strict": true}}`)

	m, err := Load(dir, "tsconfig.json")

	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()

	m, err := Load(dir, "tsconfig.json")

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.NotNil(t, m)
	assert.Equal(t, 0, m.Len())
}

func TestLoad_Malformed(t *testing.T) {
	dir := writeTsconfig(t, `{"compilerOptions": {"paths": {`)

	m, err := Load(dir, "tsconfig.json")

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 0, m.Len())
}

func TestLoad_NotConfigured(t *testing.T) {
	m, err := Load(t.TempDir(), "")

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, 0, m.Len())
}

func TestResolve_FirstMatchWins(t *testing.T) {
	// "@app/" is listed before the more specific "@app/core/"
	m := NewMapping(
		Entry{Prefix: "@app/", Replacement: "src/app/"},
		Entry{Prefix: "@app/core/", Replacement: "src/core/"},
	)

	resolved, ok := m.Resolve("@app/core/logger")

	assert.True(t, ok)
	assert.Equal(t, "src/app/core/logger", resolved)
}

func TestResolve_ReplacesOnlyThePrefix(t *testing.T) {
	m := NewMapping(Entry{Prefix: "@shared/", Replacement: "src/app/shared/"})

	resolved, ok := m.Resolve("@shared/utils/@shared/x")

	assert.True(t, ok)
	assert.Equal(t, "src/app/shared/utils/@shared/x", resolved)
}

func TestResolve_AnchoredAtStart(t *testing.T) {
	m := NewMapping(Entry{Prefix: "@app/", Replacement: "src/app/"})

	resolved, ok := m.Resolve("lib/@app/thing")

	assert.False(t, ok)
	assert.Equal(t, "lib/@app/thing", resolved)
}

func TestResolve_Identity(t *testing.T) {
	m := NewMapping(Entry{Prefix: "@app/", Replacement: "src/app/"})

	for _, spec := range []string{"./local", "../up", "rxjs", "@angular/core"} {
		resolved, ok := m.Resolve(spec)
		assert.False(t, ok)
		assert.Equal(t, spec, resolved)
	}
}

func TestResolve_NilMapping(t *testing.T) {
	var m *Mapping

	resolved, ok := m.Resolve("@app/x")

	assert.False(t, ok)
	assert.Equal(t, "@app/x", resolved)
}

func TestNewMapping_DuplicatePrefixKeepsPosition(t *testing.T) {
	m := NewMapping(
		Entry{Prefix: "a/", Replacement: "one/"},
		Entry{Prefix: "b/", Replacement: "two/"},
		Entry{Prefix: "a/", Replacement: "three/"},
	)

	assert.Equal(t, []Entry{
		{Prefix: "a/", Replacement: "three/"},
		{Prefix: "b/", Replacement: "two/"},
	}, m.Entries())
}

func TestStandardize_KeepsStringContents(t *testing.T) {
	in := []byte("{\"a\": \"x//y/*z*/\", // note\n\t\"b\": [1,],}")

	out, err := standardize(in)

	require.NoError(t, err)
	got := string(out)
	assert.Contains(t, got, `"x//y/*z*/"`)
	assert.NotContains(t, got, "note")
	assert.NotContains(t, got, "\t")
	assert.NotContains(t, got, ",]")
}

func TestParse_TabIndentedTsconfig(t *testing.T) {
	m, err := Parse([]byte("{\n\t\"compilerOptions\": {\n\t\t\"paths\": {\"@lib/*\": [\"libs/*\"]},\n\t},\n}"))

	require.NoError(t, err)
	assert.Equal(t, []Entry{{Prefix: "@lib/", Replacement: "libs/"}}, m.Entries())
}

package cli

// Test Plan for the convert command:
// - runConvert produces the expected searchIndex rows for a small tag file
// - Scope qualification and signature flags change the emitted names
// - Running the conversion twice yields the same final entry set
// - runConvert patches Info.plist when the db sits inside a docset bundle
// - --no-plist-patch leaves Info.plist untouched
// - runConvert fails on a missing tag file

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/vedvyas/doxytag2zealdb/internal/docset"
)

const sampleTagFile = `<?xml version="1.0" encoding="UTF-8"?>
<tagfile>
  <compound kind="class">
    <name>Widget</name>
    <filename>classWidget.html</filename>
    <member kind="function">
      <name>draw</name>
      <anchorfile>classWidget.html</anchorfile>
      <anchor>a0</anchor>
      <arglist>(int x)</arglist>
      <type>void</type>
    </member>
    <member kind="variable">
      <name>count</name>
      <anchorfile>classWidget.html</anchorfile>
      <anchor>a1</anchor>
    </member>
  </compound>
  <compound kind="file">
    <name>widget.h</name>
    <filename>widget_8h</filename>
  </compound>
</tagfile>
`

// setupConvert writes a sample tag file and points the command flags at it
// and at a database path in a temp directory. Flag state is restored on
// cleanup because the vars are package-level.
func setupConvert(t *testing.T, dbFile string) {
	t.Helper()

	dir := t.TempDir()
	tagFile := filepath.Join(dir, "widget.tag")
	require.NoError(t, os.WriteFile(tagFile, []byte(sampleTagFile), 0644))

	tagPath = tagFile
	dbPath = dbFile
	if dbPath == "" {
		dbPath = filepath.Join(dir, "docSet.dsidx")
	}

	t.Cleanup(func() {
		tagPath = ""
		dbPath = ""
		includeParentScopes = false
		includeFunctionSignatures = false
		noPlistPatch = false
	})
}

func readIndex(t *testing.T, filename string) map[[3]string]bool {
	t.Helper()

	db, err := sql.Open("sqlite3", filename)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT name, type, path FROM searchIndex")
	require.NoError(t, err)
	defer rows.Close()

	out := make(map[[3]string]bool)
	for rows.Next() {
		var name, entryType, path string
		require.NoError(t, rows.Scan(&name, &entryType, &path))
		out[[3]string{name, entryType, path}] = true
	}
	require.NoError(t, rows.Err())
	return out
}

func TestRunConvert(t *testing.T) {
	setupConvert(t, "")
	noPlistPatch = true

	require.NoError(t, runConvert(rootCmd, nil))

	assert.Equal(t, map[[3]string]bool{
		{"Widget", "Class", "classWidget.html"}:      true,
		{"draw", "Method", "classWidget.html#a0"}:    true,
		{"count", "Variable", "classWidget.html#a1"}: true,
		{"widget.h", "File", "widget_8h.html"}:       true,
	}, readIndex(t, dbPath))
}

func TestRunConvert_ScopesAndSignatures(t *testing.T) {
	setupConvert(t, "")
	noPlistPatch = true
	includeParentScopes = true
	includeFunctionSignatures = true

	require.NoError(t, runConvert(rootCmd, nil))

	index := readIndex(t, dbPath)
	assert.True(t, index[[3]string{"Widget::draw(int x) -> void", "Method", "classWidget.html#a0"}])
	assert.True(t, index[[3]string{"Widget::count", "Variable", "classWidget.html#a1"}])
}

func TestRunConvert_Idempotent(t *testing.T) {
	setupConvert(t, "")
	noPlistPatch = true

	require.NoError(t, runConvert(rootCmd, nil))
	first := readIndex(t, dbPath)

	require.NoError(t, runConvert(rootCmd, nil))
	assert.Equal(t, first, readIndex(t, dbPath))
}

func TestRunConvert_PatchesPlist(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "Foo.docset")
	resources := filepath.Join(bundle, "Contents", "Resources")
	require.NoError(t, os.MkdirAll(resources, 0755))

	data, err := plist.MarshalIndent(map[string]interface{}{
		"CFBundleName": "Foo",
	}, plist.XMLFormat, "\t")
	require.NoError(t, err)
	plistFile := filepath.Join(bundle, "Contents", "Info.plist")
	require.NoError(t, os.WriteFile(plistFile, data, 0644))

	setupConvert(t, filepath.Join(resources, "docSet.dsidx"))

	require.NoError(t, runConvert(rootCmd, nil))

	raw, err := os.ReadFile(docset.InfoPlistPath(dbPath))
	require.NoError(t, err)
	var info map[string]interface{}
	_, err = plist.Unmarshal(raw, &info)
	require.NoError(t, err)
	assert.Equal(t, true, info["isDashDocset"])
}

func TestRunConvert_NoPlistPatch(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "Foo.docset")
	resources := filepath.Join(bundle, "Contents", "Resources")
	require.NoError(t, os.MkdirAll(resources, 0755))

	data, err := plist.MarshalIndent(map[string]interface{}{
		"CFBundleName": "Foo",
	}, plist.XMLFormat, "\t")
	require.NoError(t, err)
	plistFile := filepath.Join(bundle, "Contents", "Info.plist")
	require.NoError(t, os.WriteFile(plistFile, data, 0644))

	setupConvert(t, filepath.Join(resources, "docSet.dsidx"))
	noPlistPatch = true

	require.NoError(t, runConvert(rootCmd, nil))

	raw, err := os.ReadFile(plistFile)
	require.NoError(t, err)
	var info map[string]interface{}
	_, err = plist.Unmarshal(raw, &info)
	require.NoError(t, err)
	_, patched := info["isDashDocset"]
	assert.False(t, patched, "plist must stay untouched with --no-plist-patch")
}

func TestRunConvert_MissingTagFile(t *testing.T) {
	setupConvert(t, "")
	noPlistPatch = true
	tagPath = filepath.Join(t.TempDir(), "nope.tag")

	err := runConvert(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open tag file")
}

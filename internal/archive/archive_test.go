package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates the given files (relative path -> content) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// entryNames opens the archive and returns its entry names.
func entryNames(t *testing.T, dest string) []string {
	t.Helper()
	r, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestCreateArchivesWholeTree(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.swift":       "print(1)",
		"Sources/app.go":   "package app",
		".git/config":      "[core]",
		"build/output.bin": "bin",
	})

	dest := filepath.Join(t.TempDir(), "proj_1.zip")
	require.NoError(t, Create(root, dest, Options{}))

	names := entryNames(t, dest)
	assert.ElementsMatch(t, []string{
		"main.swift",
		"Sources/app.go",
		".git/config",
		"build/output.bin",
	}, names)
}

func TestCreateExcludesDirectoriesAtAnyDepth(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.swift":                      "print(1)",
		"Sources/app.go":                  "package app",
		".git/config":                     "[core]",
		"build/output.bin":                "bin",
		"Sources/__pycache__/mod.pyc":     "pyc",
		"Sources/deep/.build/cache":       "cache",
		"snapshots/old_snapshot.zip":      "zip",
		"Sources/snapshots/nested.zip":    "zip",
		"DerivedData/Index/store.idx":     "idx",
		"Sources/DerivedData/trimmed.idx": "idx",
	})

	dest := filepath.Join(t.TempDir(), "proj_snapshot.zip")
	opts := Options{
		ExcludeDirs: []string{".git", "__pycache__", "DerivedData", ".build", "build", "snapshots"},
	}
	require.NoError(t, Create(root, dest, opts))

	names := entryNames(t, dest)
	assert.ElementsMatch(t, []string{"main.swift", "Sources/app.go"}, names)

	for _, name := range names {
		for _, part := range strings.Split(name, "/") {
			assert.NotContains(t, []string{".git", "__pycache__", "DerivedData", ".build", "build", "snapshots"}, part)
		}
	}
}

func TestCreateExcludesNamedFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.swift":         "print(1)",
		"save.py":            "legacy script",
		"Sources/save.py":    "nested copy",
		"Sources/notes.txt":  "notes",
		"last_agent_log.txt": "log",
	})

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, Create(root, dest, Options{ExcludeFiles: []string{"save.py"}}))

	names := entryNames(t, dest)
	assert.ElementsMatch(t, []string{"main.swift", "Sources/notes.txt", "last_agent_log.txt"}, names)
}

func TestCreateNeverIncludesItself(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.swift": "print(1)",
	})

	// Destination inside the tree being archived, with no exclusions.
	dest := filepath.Join(root, "proj_1.zip")
	require.NoError(t, Create(root, dest, Options{}))

	assert.ElementsMatch(t, []string{"main.swift"}, entryNames(t, dest))
}

func TestCreatePreservesContent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"data.txt": "snapshot payload",
	})

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, Create(root, dest, Options{}))

	r, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	require.Len(t, r.File, 1)
	rc, err := r.File[0].Open()
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	buf := make([]byte, 64)
	n, _ := rc.Read(buf)
	assert.Equal(t, "snapshot payload", string(buf[:n]))
}

func TestCreateFailsOnMissingRoot(t *testing.T) {
	t.Parallel()
	dest := filepath.Join(t.TempDir(), "out.zip")

	err := Create(filepath.Join(t.TempDir(), "missing"), dest, Options{})
	assert.Error(t, err)

	// A failed run must not leave a half-written archive behind.
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

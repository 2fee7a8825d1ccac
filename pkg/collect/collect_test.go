package collect

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hintrun/pkg/ignore"
)

// writeTree creates files (relative slash paths) under a fresh temp dir.
func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("var x = 1;\n"), 0o644))
	}
	return root
}

func names(fs FileSet) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func TestCollect_DirectoryRecursesAndFiltersSuffix(t *testing.T) {
	root := writeTree(t,
		"a.js",
		"b.txt",
		"sub/c.js",
		"sub/e.JS",
		"sub/deeper/d.js",
		"sub/deeper/deepest/f.jsx",
	)

	fs, err := Collect([]string{root}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "c.js", "d.js"}, names(fs))
	for _, f := range fs {
		assert.True(t, filepath.IsAbs(f.Path), f.Path)
	}
}

func TestCollect_ExplicitFileBypassesSuffix(t *testing.T) {
	root := writeTree(t, "script.txt")
	fs, err := Collect([]string{filepath.Join(root, "script.txt")}, Options{})
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, "script.txt", fs[0].Name)
}

func TestCollect_MissingExplicitFile(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "missing.js")

	_, err := Collect([]string{missing}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "No such file: "+missing, err.Error())
}

func TestCollect_UnreadableExplicitFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := writeTree(t, "locked.js")
	path := filepath.Join(root, "locked.js")
	require.NoError(t, os.Chmod(path, 0o000))

	_, err := Collect([]string{path}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Cannot read file: "+path, err.Error())
}

func TestCollect_UnreadableFileInDirectoryIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := writeTree(t, "ok.js", "locked.js")
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.js"), 0o000))

	fs, err := Collect([]string{root}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok.js"}, names(fs))
}

func TestCollect_DeduplicatesByAbsolutePath(t *testing.T) {
	root := writeTree(t, "a.js", "sub/b.js")

	fs, err := Collect([]string{
		filepath.Join(root, "sub", "b.js"),
		root,
		filepath.Join(root, "a.js"),
		root,
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.js", "a.js"}, names(fs))
}

func TestCollect_SymlinkCycleTerminates(t *testing.T) {
	root := writeTree(t, "a.js", "sub/b.js")
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	fs, err := Collect([]string{root}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.js"}, names(fs))
}

func TestCollect_ExcludePatterns(t *testing.T) {
	root := writeTree(t, "app.js", "app.min.js", "vendor/lib.js", "src/main.js")
	m := ignore.New(nil)
	m.CompileLines("vendor/", "*.min.js")

	fs, err := Collect([]string{root}, Options{Exclude: m, BaseDir: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js", "main.js"}, names(fs))

	// Explicit files are not subject to exclusion.
	fs, err = Collect([]string{filepath.Join(root, "app.min.js")}, Options{Exclude: m, BaseDir: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.min.js"}, names(fs))
}

func TestCollect_ExcludeIgnoresPathsOutsideBaseDir(t *testing.T) {
	root := writeTree(t, "project/vendor/lib.js", "other/vendor/dep.js")
	m := ignore.New(nil)
	m.CompileLines("vendor/", "*.js")

	fs, err := Collect([]string{root}, Options{Exclude: m, BaseDir: filepath.Join(root, "project")})
	require.NoError(t, err)
	assert.Equal(t, []string{"dep.js"}, names(fs))
}

func TestFileSet_Paths(t *testing.T) {
	fs := FileSet{{Path: "/a/x.js", Name: "x.js"}, {Path: "/b/y.js", Name: "y.js"}}
	assert.Equal(t, []string{"/a/x.js", "/b/y.js"}, fs.Paths())
}

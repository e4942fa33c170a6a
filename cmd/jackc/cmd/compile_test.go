package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCollectJackFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.jack")
	writeFile(t, file, "class Main {}")

	files, err := collectJackFiles(file)
	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)
}

func TestCollectJackFilesWrongExtension(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.vm")
	writeFile(t, file, "")

	_, err := collectJackFiles(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".jack extension")
}

func TestCollectJackFilesMissingPath(t *testing.T) {
	_, err := collectJackFiles(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCollectJackFilesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Main.jack"), "class Main {}")
	writeFile(t, filepath.Join(dir, "Ball.jack"), "class Ball {}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	writeFile(t, filepath.Join(dir, "sub", "Deep.jack"), "class Deep {}")

	files, err := collectJackFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "Ball.jack"),
		filepath.Join(dir, "Main.jack"),
	}, files, "subdirectories are not recursed and non-.jack files are skipped")
}

func TestCollectJackFilesEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	_, err := collectJackFiles(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .jack files")
}

func TestCompileFileWritesOutput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.jack")
	writeFile(t, file, "class Main { function void main() { return; } }")

	require.NoError(t, compileFile(file, false))

	out, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	require.NoError(t, err)
	assert.Equal(t, "function Main.main 0\npush constant 0\nreturn\n", string(out))
}

func TestCompileFileOverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.jack")
	outFile := filepath.Join(dir, "Main.vm")
	writeFile(t, file, "class Main { function void main() { return; } }")
	writeFile(t, outFile, "stale content\n")

	require.NoError(t, compileFile(file, false))

	out, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "stale")
}

func TestCompileFileRemovesStaleOutputOnError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.jack")
	outFile := filepath.Join(dir, "Main.vm")
	writeFile(t, file, "class Main { function void main() { return }") // missing ';' and '}'
	writeFile(t, outFile, "stale content\n")

	err := compileFile(file, false)
	require.Error(t, err)

	_, statErr := os.Stat(outFile)
	assert.True(t, os.IsNotExist(statErr), "stale output must be removed on failure")
}

func TestCompileFileErrorIncludesPosition(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Bad.jack")
	writeFile(t, file, "class Bad {\n  function void f() { return }\n}\n")

	err := compileFile(file, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad.jack:2:")
}

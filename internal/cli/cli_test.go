package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"quizbank/internal/blob"
)

type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`storage:
  driver: csv
  path: %s
categories:
  path: %s
export:
  archive:
    driver: fs
    fs_root: %s
logging:
  level: error
metrics:
  textfile: %s
`,
		filepath.Join(dir, "database.csv"),
		filepath.Join(dir, "categories.csv"),
		filepath.Join(dir, "archive"),
		filepath.Join(dir, "quizbank.prom"),
	)
	path := filepath.Join(dir, "quizbank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return workspace{dir: dir, config: path}
}

func (w workspace) run(args ...string) (string, error) {
	return w.runInput("", args...)
}

func (w workspace) runInput(input string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCommand(&out, BuildInfo{Version: "1.2.3", Commit: "abc", BuildTime: "now"})
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (w workspace) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := w.run(args...)
	require.NoError(t, err, out)
	return out
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var withExit interface{ ExitCode() int }
	require.ErrorAs(t, err, &withExit)
	return withExit.ExitCode()
}

func seed(t *testing.T, w workspace) {
	t.Helper()
	w.mustRun(t, "add", "--question", "What is 2+2?", "--answer", "4",
		"--option1", "3", "--option2", "4", "--option3", "5",
		"--category", "Math", "--new-category")
	w.mustRun(t, "add", "--question", "Capital of France?", "--answer", "Paris", "--category", "General")
	w.mustRun(t, "add", "--question", "Big-O of binary search?", "--answer", "log n",
		"--category", "CS", "--new-category", "--source", "book")
}

func listJSON(t *testing.T, w workspace, args ...string) []listedEntry {
	t.Helper()
	var rows []listedEntry
	require.NoError(t, json.Unmarshal([]byte(w.mustRun(t, append([]string{"list", "--json"}, args...)...)), &rows))
	return rows
}

func TestInitCreatesFiles(t *testing.T) {
	w := newWorkspace(t)
	out := w.mustRun(t, "init")
	require.Contains(t, out, "created")
	require.Contains(t, out, "0 questions, 0 skipped rows, 1 categories")
	require.FileExists(t, filepath.Join(w.dir, "database.csv"))
	require.FileExists(t, filepath.Join(w.dir, "categories.csv"))
	require.FileExists(t, filepath.Join(w.dir, "quizbank.prom"))

	out = w.mustRun(t, "init")
	require.Contains(t, out, "loaded")
}

func TestAddListAndFilter(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	rows := listJSON(t, w)
	require.Len(t, rows, 3)
	require.Equal(t, 0, rows[0].Position)
	require.EqualValues(t, 1, rows[0].ID)
	require.Equal(t, "What is 2+2?", rows[0].Question)
	require.Equal(t, "Paris", rows[1].Answer)

	rows = listJSON(t, w, "--filter", "category=cs")
	require.Len(t, rows, 1)
	require.EqualValues(t, 3, rows[0].ID)
	require.Equal(t, 0, rows[0].Position)

	rows = listJSON(t, w, "--search", "PARIS")
	require.Len(t, rows, 1)
	require.EqualValues(t, 2, rows[0].ID)

	out := w.mustRun(t, "list")
	require.Contains(t, out, "POS")
	require.Contains(t, out, "Capital of France?")
}

func TestAddRejectsUnknownCategory(t *testing.T) {
	w := newWorkspace(t)
	_, err := w.run("add", "--question", "Q", "--category", "Biology")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))

	_, err = w.run("add", "--answer", "no question")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
	require.Empty(t, listJSON(t, w))
}

func TestEditAndDelete(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	require.Contains(t, w.mustRun(t, "edit", "2", "--set", "answer=Paris, France", "--set", "source=atlas"), "updated question 2")
	rows := listJSON(t, w)
	require.Equal(t, "Paris, France", rows[1].Answer)
	require.Equal(t, "atlas", rows[1].Source)

	_, err := w.run("edit", "9", "--set", "answer=x")
	require.Equal(t, ExitCodeNotFound, exitCode(t, err))
	_, err = w.run("edit", "1", "--set", "difficulty=hard")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
	_, err = w.run("edit", "1", "--set", "category=Physics")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
	_, err = w.run("edit", "1", "--set", "category=Physics", "--set", "difficulty=hard", "--new-category")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
	require.NotContains(t, w.mustRun(t, "category", "list"), "Physics")

	require.Contains(t, w.mustRun(t, "rm", "1"), "deleted 1 questions")
	rows = listJSON(t, w)
	require.Len(t, rows, 2)
	require.Equal(t, "Capital of France?", rows[0].Question)

	_, err = w.run("delete", "7")
	require.Equal(t, ExitCodeNotFound, exitCode(t, err))
	_, err = w.run("delete", "zero")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
}

func TestEditAndDeleteHelpWarnAboutRenumbering(t *testing.T) {
	w := newWorkspace(t)
	for _, name := range []string{"edit", "delete"} {
		out := w.mustRun(t, name, "--help")
		require.Contains(t, out, "renumbers every later one")
		require.Contains(t, out, "quizbank shell")
	}
}

func TestShellKeepsIDsUntilSave(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	script := strings.Join([]string{
		"edit 2 answer=Lyon",
		"reset",
		"delete 1",
		"delete 3",
		"select --ids 2",
		"preview",
		"save",
		"exit",
	}, "\n")
	out, err := w.runInput(script, "shell")
	require.NoError(t, err, out)
	require.Contains(t, out, "3 questions loaded")
	require.Contains(t, out, "updated question 2")
	require.Contains(t, out, "restored 3 questions")
	require.Contains(t, out, "selected 1 questions (0 dropped)")
	require.Contains(t, out, "1. Capital of France?\n\n")
	require.Contains(t, out, "saved 1 questions")
	require.NotContains(t, out, "error:")

	rows := listJSON(t, w)
	require.Len(t, rows, 1)
	require.Equal(t, "Capital of France?", rows[0].Question)
	require.Equal(t, "Paris", rows[0].Answer)
}

func TestShellRefusesExitWithUnsavedChanges(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	script := `add question="Who wrote Hamlet?" answer=Shakespeare category=General
exit
status
exit --force
`
	out, err := w.runInput(script, "shell")
	require.NoError(t, err, out)
	require.Contains(t, out, "added question 4")
	require.Contains(t, out, "error: unsaved changes")
	require.Contains(t, out, "unsaved: true")
	require.Len(t, listJSON(t, w), 3)
}

func TestShellReportsErrorsAndContinues(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	script := strings.Join([]string{
		"delete 9",
		"edit 1 difficulty=hard",
		"frobnicate",
		`list --search "binary search"`,
		"delete 1",
	}, "\n")
	out, err := w.runInput(script, "shell")
	require.NoError(t, err, out)
	require.Equal(t, 3, strings.Count(out, "error:"))
	require.Contains(t, out, "Big-O of binary search?")
	require.Contains(t, out, "deleted 1 questions")
	require.Contains(t, out, "unsaved changes discarded")
	require.Len(t, listJSON(t, w), 3)
}

func TestExportPreviewFollowsSelection(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	out := w.mustRun(t, "export", "--preview", "--ids", "2,1")
	require.Equal(t, "1. Capital of France?\n\n2. What is 2+2?\nA) 3    B) 4    C) 5\n\n", out)

	out = w.mustRun(t, "export", "--preview", "--filter", "category=math", "--positions", "0")
	require.Equal(t, "1. What is 2+2?\nA) 3    B) 4    C) 5\n\n", out)

	out = w.mustRun(t, "export", "--preview")
	require.Contains(t, out, "3. Big-O of binary search?")

	_, err := w.run("export", "--preview", "--ids", "40")
	require.Equal(t, ExitCodeNotFound, exitCode(t, err))
}

func TestExportWritesAndArchives(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	target := filepath.Join(w.dir, "out", "sheet")
	out := w.mustRun(t, "export", "--format", "docx", "--out", target, "--random", "2")
	require.Contains(t, out, "wrote 2 questions to "+target+".docx")
	require.Contains(t, out, "archived as exports/")
	require.FileExists(t, target+".docx")

	out = w.mustRun(t, "export", "-o", filepath.Join(w.dir, "all.PDF"))
	require.Contains(t, out, "wrote 3 questions")
	data, err := os.ReadFile(filepath.Join(w.dir, "all.PDF"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries, err := os.ReadDir(filepath.Join(w.dir, "archive", "exports"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestExportUsageErrors(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	_, err := w.run("export")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
	_, err = w.run("export", "--out", "x", "--format", "odt")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
	_, err = w.run("export", "--preview", "--filter", "category=cs")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
	_, err = w.run("export", "--preview", "--ids", "1", "--random", "2")
	require.Error(t, err)
}

func TestArchiveCommands(t *testing.T) {
	w := newWorkspace(t)
	seed(t, w)

	var infos []blob.Info
	require.NoError(t, json.Unmarshal([]byte(w.mustRun(t, "archive", "list", "--json")), &infos))
	require.Empty(t, infos)

	local := filepath.Join(w.dir, "sheet.docx")
	w.mustRun(t, "export", "--format", "docx", "-o", local, "--ids", "3,1")

	require.NoError(t, json.Unmarshal([]byte(w.mustRun(t, "archive", "list", "--json")), &infos))
	require.Len(t, infos, 1)
	key := infos[0].Key
	require.Regexp(t, `^exports/[0-9a-f-]{36}/sheet\.docx$`, key)
	require.Equal(t, "docx", infos[0].Metadata["format"])
	require.Equal(t, "2", infos[0].Metadata["items"])
	require.Contains(t, w.mustRun(t, "archive", "list"), key)

	copyPath := filepath.Join(w.dir, "copies", "again.docx")
	require.Contains(t, w.mustRun(t, "archive", "get", key, "--out", copyPath), "to "+copyPath)
	want, err := os.ReadFile(local)
	require.NoError(t, err)
	got, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.Equal(t, string(want), w.mustRun(t, "archive", "get", key))

	require.Contains(t, w.mustRun(t, "archive", "rm", key), "deleted "+key)
	_, err = w.run("archive", "get", key)
	require.Equal(t, ExitCodeNotFound, exitCode(t, err))
	_, err = w.run("archive", "delete", key)
	require.Equal(t, ExitCodeNotFound, exitCode(t, err))
}

func TestArchiveDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quizbank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  archive:\n    driver: none\nlogging:\n  level: error\n"), 0o644))
	w := workspace{dir: dir, config: path}

	_, err := w.run("archive", "list")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
}

func TestCategoryCommands(t *testing.T) {
	w := newWorkspace(t)
	require.Contains(t, w.mustRun(t, "category", "add", "History"), `added category "History"`)
	require.Equal(t, "General\nHistory\n", w.mustRun(t, "category", "list"))

	var labels []string
	require.NoError(t, json.Unmarshal([]byte(w.mustRun(t, "category", "list", "--json")), &labels))
	require.Equal(t, []string{"General", "History"}, labels)

	_, err := w.run("category", "add", "History")
	require.Equal(t, ExitCodeConflict, exitCode(t, err))
	_, err = w.run("category", "add", "  ")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: mongo\n"), 0o644))
	w := workspace{dir: dir, config: path}

	_, err := w.run("list")
	require.Equal(t, ExitCodeUsage, exitCode(t, err))
}

func TestVersion(t *testing.T) {
	w := newWorkspace(t)
	require.Equal(t, "version=1.2.3 commit=abc build_time=now\n", w.mustRun(t, "version"))

	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(w.mustRun(t, "version", "--json")), &info))
	require.Equal(t, "1.2.3", info.Version)
}

func TestWithExtension(t *testing.T) {
	require.Equal(t, "a.pdf", withExtension("a", "pdf"))
	require.Equal(t, "a.PDF", withExtension("a.PDF", "pdf"))
	require.Equal(t, "a.pdf.docx", withExtension("a.pdf", "docx"))
}

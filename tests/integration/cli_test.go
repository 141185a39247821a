// Package integration provides integration tests for pubsync commands.
package integration

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	pubsyncBinary     string
	pubsyncBinaryOnce sync.Once
	pubsyncBinaryErr  error
)

// getPubsyncBinary builds the pubsync binary once and returns its path.
func getPubsyncBinary(t *testing.T) string {
	t.Helper()
	pubsyncBinaryOnce.Do(func() {
		// Get module root directory
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			pubsyncBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		// Build pubsync to a temp location
		tmpDir, err := os.MkdirTemp("", "pubsync-test-*")
		if err != nil {
			pubsyncBinaryErr = err
			return
		}
		pubsyncBinary = filepath.Join(tmpDir, "pubsync")

		cmd := exec.Command("go", "build", "-o", pubsyncBinary, "./cmd/pubsync")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			pubsyncBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if pubsyncBinaryErr != nil {
		t.Fatalf("failed to build pubsync: %v", pubsyncBinaryErr)
	}
	return pubsyncBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// runPubsync executes the binary against siteDir and returns the
// combined output and exit code. Build or exec failures (as opposed to
// the command exiting nonzero) fail the test.
func runPubsync(t *testing.T, siteDir string, args ...string) (string, int) {
	t.Helper()
	bin := getPubsyncBinary(t)

	cmd := exec.Command(bin, args...)
	cmd.Dir = siteDir
	cmd.Env = append(os.Environ(), "PUBSYNC_ROOT="+siteDir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), exitErr.ExitCode()
		}
		t.Fatalf("running pubsync %v: %v\nOutput: %s", args, err, output)
	}
	return string(output), 0
}

// setupSite initializes a fresh site in a temp directory.
func setupSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	output, code := runPubsync(t, dir, "init")
	if code != 0 {
		t.Fatalf("init failed with exit %d\nOutput: %s", code, output)
	}
	return dir
}

func TestInitCreatesSite(t *testing.T) {
	dir := t.TempDir()

	output, code := runPubsync(t, dir, "init")
	if code != 0 {
		t.Fatalf("init exit = %d, want 0\nOutput: %s", code, output)
	}

	var result struct {
		Status string `json:"status"`
		Path   string `json:"path"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse init output: %v\nOutput: %s", err, output)
	}
	if result.Status != "initialized" {
		t.Errorf("status = %q, want initialized", result.Status)
	}
	if result.Path != dir {
		t.Errorf("path = %q, want %q", result.Path, dir)
	}

	for _, name := range []string{"pubsync.yml", "paper-template.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("scaffold file %s: %v", name, err)
		}
	}
	if info, err := os.Stat(filepath.Join(dir, "_papers")); err != nil || !info.IsDir() {
		t.Errorf("_papers directory missing after init (err = %v)", err)
	}
}

func TestInitRefusesExistingSite(t *testing.T) {
	dir := setupSite(t)

	output, code := runPubsync(t, dir, "init")
	if code != 1 {
		t.Fatalf("second init exit = %d, want 1\nOutput: %s", code, output)
	}

	var result struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse error output: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(result.Error, "already contains") {
		t.Errorf("error = %q, want mention of the existing site", result.Error)
	}
}

func TestCheckCleanSite(t *testing.T) {
	dir := setupSite(t)

	output, code := runPubsync(t, dir, "check")
	if code != 0 {
		t.Fatalf("check exit = %d, want 0\nOutput: %s", code, output)
	}

	var result struct {
		Status string            `json:"status"`
		Pages  int               `json:"pages"`
		Issues []json.RawMessage `json:"issues"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse check output: %v\nOutput: %s", err, output)
	}
	if result.Status != "ok" {
		t.Errorf("status = %q, want ok", result.Status)
	}
	if result.Pages != 0 {
		t.Errorf("pages = %d, want 0", result.Pages)
	}
	// issues must serialize as an empty array, not null
	if !strings.Contains(output, `"issues": []`) {
		t.Errorf("check output missing empty issues array:\n%s", output)
	}
}

func TestCheckReportsIssuesExitZero(t *testing.T) {
	dir := setupSite(t)

	page := "---\nlayout: paper\ntitle: \"No identifier here\"\n---\n"
	if err := os.WriteFile(filepath.Join(dir, "_papers", "stray.md"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	output, code := runPubsync(t, dir, "check")
	if code != 0 {
		t.Fatalf("check exit = %d, want 0 even with issues\nOutput: %s", code, output)
	}

	var result struct {
		Status string `json:"status"`
		Issues []struct {
			Type string `json:"type"`
			File string `json:"file"`
		} `json:"issues"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse check output: %v\nOutput: %s", err, output)
	}
	if result.Status != "issues" {
		t.Errorf("status = %q, want issues", result.Status)
	}
	if len(result.Issues) != 1 || result.Issues[0].Type != "missing_pmid" {
		t.Errorf("issues = %+v, want a single missing_pmid", result.Issues)
	}
	if len(result.Issues) == 1 && result.Issues[0].File != filepath.Join("_papers", "stray.md") {
		t.Errorf("issue file = %q, want _papers/stray.md", result.Issues[0].File)
	}
}

func TestAddRejectsMalformedPMID(t *testing.T) {
	dir := setupSite(t)

	output, code := runPubsync(t, dir, "add", "12x45")
	if code != 1 {
		t.Fatalf("add exit = %d, want 1\nOutput: %s", code, output)
	}

	var result struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse error output: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(result.Error, "invalid PMID") {
		t.Errorf("error = %q, want mention of the invalid PMID", result.Error)
	}
}

func TestConfigShowsScaffoldDefaults(t *testing.T) {
	dir := setupSite(t)

	output, code := runPubsync(t, dir, "config")
	if code != 0 {
		t.Fatalf("config exit = %d, want 0\nOutput: %s", code, output)
	}

	var result struct {
		Root    string `json:"root"`
		Email   string `json:"email"`
		Tool    string `json:"tool"`
		Authors []struct {
			Name  string `json:"name"`
			Start string `json:"start"`
		} `json:"authors"`
		ExcludePMIDs []string `json:"exclude_pmids"`
		PapersDir    string   `json:"papers_dir"`
		Template     string   `json:"template"`
		Export       string   `json:"export"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse config output: %v\nOutput: %s", err, output)
	}
	if result.Tool != "pubsync" {
		t.Errorf("tool = %q, want pubsync", result.Tool)
	}
	if result.Email != "you@example.org" {
		t.Errorf("email = %q, want the scaffold placeholder", result.Email)
	}
	if result.PapersDir != "_papers" || result.Template != "paper-template.md" || result.Export != "articles.csv" {
		t.Errorf("paths = %q %q %q, want the scaffold defaults",
			result.PapersDir, result.Template, result.Export)
	}
	if len(result.Authors) != 1 || result.Authors[0].Name != "Matsen FA" || result.Authors[0].Start != "2008-01-01" {
		t.Errorf("authors = %+v, want the scaffold author", result.Authors)
	}
	if result.ExcludePMIDs == nil {
		t.Error("exclude_pmids is null, want an empty array")
	}
}

func TestCommandOutsideSite(t *testing.T) {
	dir := t.TempDir()

	output, code := runPubsync(t, dir, "config")
	if code != 2 {
		t.Fatalf("config exit = %d, want 2 outside a site\nOutput: %s", code, output)
	}

	var result struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse error output: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(result.Error, "pubsync.yml") {
		t.Errorf("error = %q, want mention of pubsync.yml", result.Error)
	}
}

func TestHumanFlag(t *testing.T) {
	dir := setupSite(t)

	output, code := runPubsync(t, dir, "check", "--human")
	if code != 0 {
		t.Fatalf("check --human exit = %d, want 0\nOutput: %s", code, output)
	}
	if !strings.Contains(output, "Site check: OK") {
		t.Errorf("human output missing check summary:\n%s", output)
	}
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("--human produced JSON:\n%s", output)
	}
}

func TestCLIRoundTrip(t *testing.T) {
	dir := t.TempDir()

	// 1. Initialize a site
	if _, code := runPubsync(t, dir, "init"); code != 0 {
		t.Fatalf("init exit = %d, want 0", code)
	}

	// 2. Configuration resolves with defaults applied
	output, code := runPubsync(t, dir, "config")
	if code != 0 {
		t.Fatalf("config exit = %d, want 0\nOutput: %s", code, output)
	}
	var cfg struct {
		Tool string `json:"tool"`
	}
	if err := json.Unmarshal([]byte(output), &cfg); err != nil || cfg.Tool != "pubsync" {
		t.Fatalf("config output = %s (err = %v)", output, err)
	}

	// 3. A fresh site checks clean
	output, code = runPubsync(t, dir, "check")
	if code != 0 || !strings.Contains(output, `"status": "ok"`) {
		t.Fatalf("clean check exit = %d\nOutput: %s", code, output)
	}

	// 4. A malformed add argument fails before any fetch happens
	if _, code = runPubsync(t, dir, "add", "not-a-pmid"); code != 1 {
		t.Fatalf("add exit = %d, want 1", code)
	}

	// 5. A defective page turns up in the next check, still exit 0
	page := "---\nlayout: paper\n---\n"
	if err := os.WriteFile(filepath.Join(dir, "_papers", "stray.md"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	output, code = runPubsync(t, dir, "check")
	if code != 0 || !strings.Contains(output, `"status": "issues"`) {
		t.Fatalf("dirty check exit = %d\nOutput: %s", code, output)
	}
}

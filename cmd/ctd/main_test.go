package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/codetime-dashboard-tui/internal/db"
	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	dbPath, storeBackend, logLevel = "", "", ""
	watchDir, eventsPath, headless = "", "", false
	reportWidth, resetYes = 80, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "stats.db"))
	t.Setenv("LOG_PATH", filepath.Join(dir, "ctd.log"))
	return filepath.Join(dir, "stats.db")
}

func seed(t *testing.T, path string) {
	t.Helper()
	database, err := db.New(path)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	defer database.Close()

	l := ledger.New()
	l.Accumulate("go", 3600, time.Now())
	l.Accumulate("python", 1200, time.Now())
	if err := store.NewGateway(database, "").Save(context.Background(), l.Snapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func load(t *testing.T, path string) *ledger.Ledger {
	t.Helper()
	database, err := db.New(path)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	defer database.Close()

	l, err := store.NewGateway(database, "").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return l
}

func TestReport(t *testing.T) {
	path := testEnv(t)
	seed(t, path)

	out, err := execute(t, "", "report", "--db", path)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"Total 1h 20m", "Top Go", "Python", "Last 7 days", "Last saved "} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestReport_Empty(t *testing.T) {
	path := testEnv(t)

	out, err := execute(t, "", "report", "--db", path)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "No coding time recorded yet.") {
		t.Errorf("report = %q", out)
	}
	if strings.Contains(out, "Last saved") {
		t.Error("nothing was saved yet")
	}
}

func TestReset(t *testing.T) {
	path := testEnv(t)
	seed(t, path)

	out, err := execute(t, "", "reset", "--yes", "--db", path)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out, "All stats cleared.") {
		t.Errorf("reset output = %q", out)
	}
	if n := len(load(t, path).Categories()); n != 0 {
		t.Errorf("categories after reset = %d, want 0", n)
	}
}

func TestReset_HelpWarnsAboutRunningTracker(t *testing.T) {
	// A running tracker writes its in-memory stats back over a reset.
	if !strings.Contains(resetCmd.Long, `Stop any running "ctd run" first`) {
		t.Errorf("reset help = %q", resetCmd.Long)
	}
}

func TestReset_Prompt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		cleared bool
	}{
		{"yes", "y\n", true},
		{"full word", "YES\n", true},
		{"no", "n\n", false},
		{"empty", "\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testEnv(t)
			seed(t, path)

			out, err := execute(t, tt.input, "reset", "--db", path)
			if err != nil {
				t.Fatalf("reset: %v", err)
			}
			if !strings.Contains(out, "[y/N]") {
				t.Errorf("missing prompt: %q", out)
			}

			cleared := len(load(t, path).Categories()) == 0
			if cleared != tt.cleared {
				t.Errorf("cleared = %v, want %v", cleared, tt.cleared)
			}
			if !tt.cleared && !strings.Contains(out, "Aborted.") {
				t.Errorf("output = %q, want Aborted.", out)
			}
		})
	}
}

func TestRun_StdinRequiresHeadless(t *testing.T) {
	testEnv(t)

	_, err := execute(t, "", "run", "--events", "-")
	if err == nil || !strings.Contains(err.Error(), "--headless") {
		t.Errorf("err = %v, want --headless hint", err)
	}
}

func TestInvalidBackend(t *testing.T) {
	testEnv(t)

	_, err := execute(t, "", "report", "--store", "etcd")
	if err == nil || !strings.Contains(err.Error(), "unknown store backend") {
		t.Errorf("err = %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "codetime-dashboard-tui ") {
		t.Errorf("version = %q", out)
	}
}

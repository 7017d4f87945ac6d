package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evcraddock/everylot/internal/db"
	"github.com/evcraddock/everylot/internal/lot"
	"github.com/evcraddock/everylot/internal/post"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// testEnv isolates a command from the user's config and environment and
// returns the global flags pointing at a fresh database.
func testEnv(t *testing.T, lots ...*lot.Lot) (dbPath string, flags []string) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_PATH", "PRINT_FORMAT", "SEARCH_FORMAT", "EVERYLOT_IMAGE_DIR", "EVERYLOT_METRICS_FILE",
		"GOOGLE_API_KEY", "BLUESKY_HOST", "BLUESKY_IDENTIFIER", "BLUESKY_PASSWORD", "START_ID",
		"STREETVIEW_PITCH", "STREETVIEW_FOV", "POST_LENGTH_LIMIT", "ENABLE_BLUESKY",
	} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	dbPath = filepath.Join(dir, "lots.db")

	d, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := lot.NewRepository(d).InsertAll(context.Background(), lots); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	return dbPath, []string{
		"--db", dbPath,
		"--config", filepath.Join(dir, "config.yaml"),
		"--env-file", filepath.Join(dir, ".env"),
	}
}

func testLot(id int64, addr string) *lot.Lot {
	value := 180000.0
	zip := "45220"
	return &lot.Lot{ID: id, Address: &addr, ImprovementValue: &value, Zipcode: &zip, Lat: 39.13, Lon: -84.51}
}

func TestRootHelp(t *testing.T) {
	_, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("expected --format flag to exist")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("expected --format default 'text', got %q", formatFlag.DefValue)
	}

	for _, name := range []string{"db", "config", "env-file", "verbose", "metrics-file"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != Version {
		t.Errorf("version output = %q, want %q", out, Version)
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"show without id", []string{"show"}},
		{"show non-numeric id", []string{"show", "abc"}},
		{"import without file", []string{"import"}},
		{"post with args", []string{"post", "extra"}},
		{"validate with args", []string{"validate", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, flags := testEnv(t)
			if _, err := executeCommand(append(tt.args, flags...)...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestShow(t *testing.T) {
	_, flags := testEnv(t, testLot(7, "3401 VINE ST"))

	out, err := executeCommand(append([]string{"show", "7"}, flags...)...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Lot #7") {
		t.Errorf("output missing lot header:\n%s", out)
	}
	if !strings.Contains(out, "3401 Vine Street, 45220") {
		t.Errorf("output missing composed post:\n%s", out)
	}
}

func TestShowJSON(t *testing.T) {
	_, flags := testEnv(t, testLot(7, "3401 VINE ST"))

	out, err := executeCommand(append([]string{"show", "7", "--format", "json"}, flags...)...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}

	var resp showResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.Lot == nil || resp.Lot.ID != 7 {
		t.Errorf("lot = %+v", resp.Lot)
	}
	if resp.Draft == nil || resp.Draft.Lat != 39.13 {
		t.Errorf("draft = %+v", resp.Draft)
	}
}

func TestShowNotFound(t *testing.T) {
	_, flags := testEnv(t)

	_, err := executeCommand(append([]string{"show", "99"}, flags...)...)
	if !errors.Is(err, lot.ErrNotFound) {
		t.Fatalf("error = %v, want lot.ErrNotFound", err)
	}
}

func TestPostDryRun(t *testing.T) {
	dbPath, flags := testEnv(t, testLot(7, "3401 VINE ST"))
	metricsPath := filepath.Join(t.TempDir(), "everylot.prom")

	args := append([]string{"post", "--dry-run", "--metrics-file", metricsPath}, flags...)
	out, err := executeCommand(args...)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !strings.Contains(out, "Dry run for lot #7") {
		t.Errorf("output = %q", out)
	}

	d, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer closeDB(d)
	l, err := lot.NewRepository(d).Select(context.Background(), nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if l == nil {
		t.Fatal("dry run marked the lot posted")
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), `everylot_runs_total{outcome="dry_run"} 1`) {
		t.Errorf("metrics missing dry run outcome:\n%s", data)
	}
}

func TestPostNoLot(t *testing.T) {
	_, flags := testEnv(t)

	out, err := executeCommand(append([]string{"post", "--dry-run"}, flags...)...)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !strings.Contains(out, "No lot to post.") {
		t.Errorf("output = %q", out)
	}
}

func TestPostRequiresBlueskyCredentials(t *testing.T) {
	_, flags := testEnv(t, testLot(7, "3401 VINE ST"))

	_, err := executeCommand(append([]string{"post", "--no-image"}, flags...)...)
	if err == nil || !strings.Contains(err.Error(), "BLUESKY_IDENTIFIER") {
		t.Fatalf("error = %v, want missing credentials", err)
	}
}

func TestValidateCommand(t *testing.T) {
	_, flags := testEnv(t,
		testLot(1, "1 MAIN ST"),
		testLot(2, "1200 W MARTIN LUTHER KING DR"),
	)
	t.Setenv("PRINT_FORMAT", "{address}")
	report := filepath.Join(t.TempDir(), "long_posts.txt")

	args := append([]string{"validate", "--limit", "20", "--out", report}, flags...)
	out, err := executeCommand(args...)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "1 posts longer than 20 characters") {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "ID: 2") || strings.Contains(string(data), "ID: 1,") {
		t.Errorf("report = %q", data)
	}
}

func TestStatus(t *testing.T) {
	_, flags := testEnv(t, testLot(1, "1 MAIN ST"), testLot(2, "2 MAIN ST"))

	out, err := executeCommand(append([]string{"status", "--format", "json"}, flags...)...)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	var counts lot.Counts
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if counts.Total != 2 || counts.Eligible != 2 || counts.Posted != 0 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestOpenDatasetStorageError(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "not a sqlite file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "garbage.db")
				if err := os.WriteFile(path, []byte(strings.Repeat("not a database ", 100)), 0o600); err != nil {
					t.Fatalf("setup: %v", err)
				}
				return path
			},
		},
		{
			name: "parent is a regular file",
			setup: func(t *testing.T) string {
				parent := filepath.Join(t.TempDir(), "file")
				if err := os.WriteFile(parent, []byte("x"), 0o600); err != nil {
					t.Fatalf("setup: %v", err)
				}
				return filepath.Join(parent, "lots.db")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, flags := testEnv(t)
			flags[1] = tt.setup(t)

			_, err := executeCommand(append([]string{"status"}, flags...)...)
			var serr *lot.StorageError
			if !errors.As(err, &serr) {
				t.Fatalf("expected StorageError, got %T: %v", err, err)
			}
			if serr.Op != "opening dataset" {
				t.Errorf("op = %q, want %q", serr.Op, "opening dataset")
			}
		})
	}
}

func TestPostRejectsUnknownPrintField(t *testing.T) {
	_, flags := testEnv(t, testLot(7, "3401 VINE ST"))
	t.Setenv("PRINT_FORMAT", "{address} {nope}")

	_, err := executeCommand(append([]string{"post", "--dry-run"}, flags...)...)
	var ce *post.CompositionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompositionError, got %T: %v", err, err)
	}
	if ce.Field != "nope" {
		t.Errorf("field = %q, want %q", ce.Field, "nope")
	}
}

func TestImportMissingFile(t *testing.T) {
	_, flags := testEnv(t)

	_, err := executeCommand(append([]string{"import", filepath.Join(t.TempDir(), "none.shp")}, flags...)...)
	if err == nil {
		t.Fatal("expected error")
	}
}

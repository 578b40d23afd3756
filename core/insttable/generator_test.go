package insttable

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	srcerrors "github.com/FocuswithJustin/srctools/core/errors"
	"github.com/FocuswithJustin/srctools/internal/digest"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestGenerator_Run(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "x86defs.cpp", sampleSource)

	var out bytes.Buffer
	g := New(Config{Targets: []Target{{Path: path, Arch: "x86"}}, Out: &out})
	report, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := readTestFile(t, path)
	if !strings.Contains(got, "// ${X86_INST_DATA:BEGIN}\n"+sampleBlock+"// ${X86_INST_DATA:END}\n") {
		t.Errorf("generated block not found in:\n%s", got)
	}

	if len(report.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Results))
	}
	res := report.Results[0]
	if res.Entries != 2 || res.BlobSize != 8 || !res.Changed {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.BLAKE3 != digest.Sum([]byte(got)) {
		t.Error("result digest does not match written content")
	}
	if !strings.Contains(out.String(), "Generated: "+path+" (2 instructions, 8 bytes)") {
		t.Errorf("unexpected report: %s", out.String())
	}
}

func TestGenerator_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "x86defs.cpp", sampleSource)
	g := New(Config{Targets: []Target{{Path: path, Arch: "x86"}}})

	if _, err := g.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	first := readTestFile(t, path)

	report, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if second := readTestFile(t, path); second != first {
		t.Errorf("second run changed the file:\n%s\n---\n%s", first, second)
	}
	if len(report.Stale()) != 0 {
		t.Errorf("second run reported stale targets: %+v", report.Stale())
	}
}

func TestGenerator_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "x86defs.cpp", sampleSource)

	var out bytes.Buffer
	g := New(Config{Targets: []Target{{Path: path, Arch: "x86"}}, DryRun: true, Out: &out})
	report, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := readTestFile(t, path); got != sampleSource {
		t.Error("dry run modified the file")
	}
	if len(report.Stale()) != 1 {
		t.Errorf("expected 1 stale target, got %d", len(report.Stale()))
	}
	if !strings.HasPrefix(out.String(), "Stale: "+path) {
		t.Errorf("unexpected report: %s", out.String())
	}

	// Regenerate, then a dry run reports the file as current.
	if _, err := New(Config{Targets: []Target{{Path: path, Arch: "x86"}}}).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out.Reset()
	report, err = g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Stale()) != 0 {
		t.Errorf("expected no stale targets, got %d", len(report.Stale()))
	}
	if !strings.HasPrefix(out.String(), "Up to date: "+path) {
		t.Errorf("unexpected report: %s", out.String())
	}
}

func TestGenerator_MissingMarkerLeavesFileUntouched(t *testing.T) {
	for _, marker := range []string{"// ${X86_INST_DATA:BEGIN}\n", "// ${X86_INST_DATA:END}\n"} {
		t.Run(strings.TrimSpace(marker), func(t *testing.T) {
			dir := t.TempDir()
			content := strings.Replace(sampleSource, marker, "", 1)
			path := createTestFile(t, dir, "x86defs.cpp", content)

			_, err := New(Config{Targets: []Target{{Path: path, Arch: "x86"}}}).Run(context.Background())
			var me *srcerrors.MarkerError
			if !errors.As(err, &me) {
				t.Fatalf("expected MarkerError, got %v", err)
			}
			if me.Path != path {
				t.Errorf("Path = %q, want %q", me.Path, path)
			}
			if got := readTestFile(t, path); got != content {
				t.Error("file modified after marker failure")
			}
		})
	}
}

func TestGenerator_PatternFailure(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "empty.cpp", "// ${X86_INST_DATA:BEGIN}\n// ${X86_INST_DATA:END}\n")

	_, err := New(Config{Targets: []Target{{Path: path, Arch: "x86"}}}).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "Couldn't match x86InstInfo[] in " + path; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestGenerator_AbortsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	good := createTestFile(t, dir, "good.cpp", sampleSource)
	bad := createTestFile(t, dir, "bad.cpp", "no table here\n")
	later := createTestFile(t, dir, "later.cpp", sampleSource)

	g := New(Config{Targets: []Target{
		{Path: good, Arch: "x86"},
		{Path: bad, Arch: "x86"},
		{Path: later, Arch: "x86"},
	}})
	report, err := g.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(report.Results) != 1 || report.Results[0].Path != good {
		t.Errorf("expected only the first target to succeed, got %+v", report.Results)
	}
	if readTestFile(t, good) == sampleSource {
		t.Error("first target should have been regenerated")
	}
	if readTestFile(t, later) != sampleSource {
		t.Error("targets after the failure must not be attempted")
	}
}

func TestGenerator_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.cpp")
	_, err := New(Config{Targets: []Target{{Path: path, Arch: "x86"}}}).Run(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestGenerator_EmptyArch(t *testing.T) {
	path := createTestFile(t, t.TempDir(), "x86defs.cpp", sampleSource)
	_, err := New(Config{Targets: []Target{{Path: path}}}).Run(context.Background())
	if !errors.Is(err, srcerrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGenerator_Canceled(t *testing.T) {
	path := createTestFile(t, t.TempDir(), "x86defs.cpp", sampleSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Targets: []Target{{Path: path, Arch: "x86"}}}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if readTestFile(t, path) != sampleSource {
		t.Error("file modified after cancel")
	}
}

func TestGenerator_NoTargets(t *testing.T) {
	report, err := New(Config{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("expected no results, got %d", len(report.Results))
	}
}

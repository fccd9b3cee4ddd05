package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vnykmshr/linepool/internal/testutil"
	lperrors "github.com/vnykmshr/linepool/pkg/common/errors"
)

func TestRunInputDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.txt":    "1\n2\n3\n",
		"b.txt":    "1\n2",
		"skip.log": "1\n2\n3\n4\n",
	})
	out := filepath.Join(t.TempDir(), "results.txt")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--input", dir, "--out", out, "--threads", "2"}, &stdout, &stderr)
	testutil.AssertNoError(t, err)

	got := stdout.String()
	for _, want := range []string{
		"Starting parallel text processing with 2 threads...",
		"Processing 2 files...",
		"Processed file 1/2, lines: ",
		"Processed file 2/2, lines: ",
		"===== RESULTS =====",
		"Total lines: 5",
		"Files processed: 2",
		"Threads used: 2",
		"Done. Results written to " + out,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("stdout missing %q:\n%s", want, got)
		}
	}

	data, err := os.ReadFile(out)
	testutil.AssertNoError(t, err)
	want := filepath.Join(dir, "a.txt") + ": 3\n" + filepath.Join(dir, "b.txt") + ": 2\nTOTAL: 5\n"
	testutil.AssertEqual(t, string(data), want)
}

func TestRunPositionalFiles(t *testing.T) {
	paths := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"x.txt": "one\n",
		"y.md":  "one\ntwo\n",
	})
	missing := filepath.Join(t.TempDir(), "missing.txt")

	var stdout, stderr bytes.Buffer
	args := append([]string{"--threads", "3"}, append(paths, missing)...)
	err := run(context.Background(), args, &stdout, &stderr)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, strings.Contains(stdout.String(), "Total lines: 3"), true)
	testutil.AssertEqual(t, strings.Contains(stdout.String(), "Files failed: 1"), true)
	testutil.AssertEqual(t, strings.Contains(stderr.String(), "cannot count "+missing), true)
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.log": "1\n2\n",
		"b.txt": "1\n",
	})
	cfgPath := filepath.Join(t.TempDir(), "linepool.yaml")
	cfg := "input: " + dir + "\next: .log\nthreads: 4\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	// --threads overrides the file.
	err := run(context.Background(), []string{"--config", cfgPath, "--threads", "1"}, &stdout, &stderr)
	testutil.AssertNoError(t, err)

	got := stdout.String()
	testutil.AssertEqual(t, strings.Contains(got, "with 1 threads"), true)
	testutil.AssertEqual(t, strings.Contains(got, "Total lines: 2"), true)
	testutil.AssertEqual(t, strings.Contains(got, "Files processed: 1"), true)
}

func TestRunInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(error) bool
	}{
		{"unknown flag", []string{"--bogus"}, func(err error) bool { return errors.Is(err, errUsage) }},
		{"help", []string{"-h"}, func(err error) bool { return errors.Is(err, flag.ErrHelp) }},
		{"negative threads", []string{"--threads", "-1"}, lperrors.IsValidationError},
		{"bad ext", []string{"--ext", "txt"}, lperrors.IsValidationError},
		{"bad schedule", []string{"--schedule", "whenever"}, lperrors.IsValidationError},
		{"missing input dir", []string{"--input", "/does/not/exist"}, func(err error) bool {
			return errors.Is(err, os.ErrNotExist)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			testutil.AssertError(t, err)
			if !tt.want(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestInputsDefault(t *testing.T) {
	cfg, err := parseConfig(nil, &bytes.Buffer{})
	testutil.AssertNoError(t, err)

	files, err := inputs(cfg)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(files), defaultInputCount)
	testutil.AssertEqual(t, files[0], "test_file_1.txt")
}

func TestInputsEmptyDir(t *testing.T) {
	cfg, err := parseConfig([]string{"--input", t.TempDir()}, &bytes.Buffer{})
	testutil.AssertNoError(t, err)

	files, err := inputs(cfg)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(files), 0)
}

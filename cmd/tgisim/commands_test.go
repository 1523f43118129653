package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestRunRejectsUnknownFormatBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "keep.csv")
	if err := os.WriteFile(existing, []byte("previous results\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		out  string
	}{
		{"new file", filepath.Join(dir, "new.xml")},
		{"existing file", existing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, statErr := os.ReadFile(tt.out)

			cmd := newRunCmd()
			cmd.SetArgs([]string{"--format", "xml", "--out", tt.out})
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			if err := cmd.Execute(); err == nil {
				t.Fatal("expected error for unknown format")
			}

			after, err := os.ReadFile(tt.out)
			if statErr != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					t.Errorf("output file created for a rejected format: %v", err)
				}
				return
			}
			if string(after) != string(before) {
				t.Errorf("existing output truncated: got %q, want %q", after, before)
			}
		})
	}
}

func TestCheckFormat(t *testing.T) {
	for _, f := range outputFormats {
		if err := checkFormat(f); err != nil {
			t.Errorf("checkFormat(%q): %v", f, err)
		}
	}
	for _, f := range []string{"", "xml", "CSV"} {
		if err := checkFormat(f); err == nil {
			t.Errorf("checkFormat(%q) should fail", f)
		}
	}
}

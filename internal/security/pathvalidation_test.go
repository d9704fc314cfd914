package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"file in directory", filepath.Join(dir, "run.csv"), false},
		{"file in subdirectory", filepath.Join(dir, "sub", "run.csv"), false},
		{"dot-dot escape", filepath.Join(dir, "..", "run.csv"), true},
		{"absolute elsewhere", "/etc/passwd", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tc.path, dir)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidatePathWithinDirectory(%q) error = %v, wantErr %v", tc.path, err, tc.wantErr)
			}
		})
	}
}

func TestValidatePathWithinDirectorySymlinkEscape(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(dir, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if err := ValidatePathWithinDirectory(filepath.Join(link, "new.csv"), dir); err == nil {
		t.Error("expected a new file under a symlink leaving the directory to be rejected")
	}
}

func TestCanonicalPathMissingFile(t *testing.T) {
	dir := t.TempDir()
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalPath(filepath.Join(dir, "a", "b.mp4"))
	if err != nil {
		t.Fatalf("CanonicalPath: %v", err)
	}
	if want := filepath.Join(realDir, "a", "b.mp4"); got != want {
		t.Errorf("CanonicalPath = %q, want %q", got, want)
	}
}

func TestValidateOutputPaths(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "drive.mp4")
	if err := os.WriteFile(input, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "alias.mp4")
	haveLink := os.Symlink(input, link) == nil

	if err := ValidateOutputPaths(input,
		filepath.Join(dir, "drive_guidance.mp4"), filepath.Join(dir, "drive.csv"), ""); err != nil {
		t.Errorf("valid outputs rejected: %v", err)
	}

	if err := ValidateOutputPaths(input, input); !errors.Is(err, ErrOverwritesInput) {
		t.Errorf("output equal to input: got %v, want ErrOverwritesInput", err)
	}
	if haveLink {
		if err := ValidateOutputPaths(input, link); !errors.Is(err, ErrOverwritesInput) {
			t.Errorf("output symlinked to input: got %v, want ErrOverwritesInput", err)
		}
	}

	out := filepath.Join(dir, "out.mp4")
	if err := ValidateOutputPaths(input, out, filepath.Join(dir, ".", "out.mp4")); err == nil {
		t.Error("expected duplicate outputs to be rejected")
	}
	if err := ValidateOutputPaths(input, filepath.Join(dir, "missing", "out.csv")); err == nil {
		t.Error("expected a missing output directory to be rejected")
	}
	if err := ValidateOutputPaths(input, filepath.Join(input, "out.csv")); err == nil {
		t.Error("expected a file used as a directory to be rejected")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "unknown"},
		{"laneguide", "laneguide"},
		{"my runs (copy)", "my_runs_copy"},
		{"../../etc", "etc"},
		{"...", "unknown"},
		{"a//b", "a_b"},
	}
	for _, tc := range tests {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

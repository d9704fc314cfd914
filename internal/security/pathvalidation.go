// Package security validates the file paths a run writes to.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOverwritesInput is returned when an output path resolves to the input
// video.
var ErrOverwritesInput = errors.New("output path would overwrite the input video")

// CanonicalPath returns the absolute path of p with symlinks resolved. For a
// path that does not exist yet, the deepest existing parent is resolved and
// the remaining components are joined back on, so a new file under a
// symlinked directory still maps to its real location.
func CanonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	check := abs
	for {
		parent := filepath.Dir(check)
		if parent == check {
			return abs, nil
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rel, _ := filepath.Rel(parent, abs)
			return filepath.Join(resolved, rel), nil
		}
		check = parent
	}
}

// ValidatePathWithinDirectory checks that filePath, after resolving symlinks,
// stays inside dir.
func ValidatePathWithinDirectory(filePath, dir string) error {
	canonical, err := CanonicalPath(filePath)
	if err != nil {
		return err
	}
	canonicalDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory symlinks: %w", err)
	}
	if canonicalDir, err = filepath.Abs(canonicalDir); err != nil {
		return fmt.Errorf("failed to resolve directory path: %w", err)
	}

	rel, err := filepath.Rel(canonicalDir, canonical)
	if err != nil {
		return fmt.Errorf("path is outside directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, dir)
	}
	return nil
}

// ValidateOutputPaths checks the files a run is about to create. Every
// non-empty output must have an existing parent directory, must not resolve
// to the input video, and must not collide with another output.
func ValidateOutputPaths(input string, outputs ...string) error {
	in, err := CanonicalPath(input)
	if err != nil {
		return err
	}

	seen := make(map[string]string, len(outputs))
	for _, out := range outputs {
		if out == "" {
			continue
		}
		canonical, err := CanonicalPath(out)
		if err != nil {
			return err
		}
		if canonical == in {
			return fmt.Errorf("%w: %s", ErrOverwritesInput, out)
		}
		if prev, ok := seen[canonical]; ok {
			return fmt.Errorf("output paths %s and %s refer to the same file", prev, out)
		}
		seen[canonical] = out

		parent := filepath.Dir(canonical)
		info, err := os.Stat(parent)
		if err != nil {
			return fmt.Errorf("output directory for %s: %w", out, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("output directory for %s is not a directory", out)
		}
	}
	return nil
}

// SanitizeFilename makes a safe filename from an arbitrary string. Characters
// other than ASCII letters, digits, dot, underscore and dash become a single
// underscore, and the result is capped at 128 bytes.
func SanitizeFilename(s string) string {
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	const maxLen = 128
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

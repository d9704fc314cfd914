package db

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func newMigrateCommand(t *testing.T, in string) (*MigrateCommand, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &MigrateCommand{
		DBPath: filepath.Join(t.TempDir(), "cli.db"),
		In:     strings.NewReader(in),
		Out:    out,
	}, out
}

func TestMigrateCommandUsage(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		want    string
	}{
		{"no action", nil, ErrUsage, "Usage: guidance migrate"},
		{"help", []string{"help"}, nil, "Actions:"},
		{"unknown", []string{"sideways"}, ErrUsage, "Unknown migrate action: sideways"},
		{"version without number", []string{"version"}, ErrUsage, "migrate version <version_number>"},
		{"force without number", []string{"force"}, ErrUsage, "migrate force <version_number>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, out := newMigrateCommand(t, "")
			err := cmd.Run(tc.args)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
			if !strings.Contains(out.String(), tc.want) {
				t.Errorf("output missing %q:\n%s", tc.want, out.String())
			}
		})
	}
}

func TestMigrateCommandLifecycle(t *testing.T) {
	cmd, out := newMigrateCommand(t, "")

	if err := cmd.Run([]string{"status"}); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out.String(), "Pending: 3") {
		t.Errorf("fresh status should list 3 pending:\n%s", out.String())
	}

	out.Reset()
	if err := cmd.Run([]string{"up"}); err != nil {
		t.Fatalf("up: %v", err)
	}
	if !strings.Contains(out.String(), "Current version: 3") {
		t.Errorf("up output:\n%s", out.String())
	}

	out.Reset()
	if err := cmd.Run([]string{"down"}); err != nil {
		t.Fatalf("down: %v", err)
	}
	if !strings.Contains(out.String(), "Current version: 2") {
		t.Errorf("down output:\n%s", out.String())
	}

	out.Reset()
	if err := cmd.Run([]string{"version", "1"}); err != nil {
		t.Fatalf("version 1: %v", err)
	}
	if !strings.Contains(out.String(), "Migrated to version 1") {
		t.Errorf("version output:\n%s", out.String())
	}

	if err := cmd.Run([]string{"version", "x"}); err == nil {
		t.Error("expected error for non-numeric version")
	}
}

func TestMigrateCommandForce(t *testing.T) {
	cmd, out := newMigrateCommand(t, "n\n")
	if err := cmd.Run([]string{"force", "2"}); err != nil {
		t.Fatalf("force declined: %v", err)
	}
	if !strings.Contains(out.String(), "Aborted") {
		t.Errorf("declined force should abort:\n%s", out.String())
	}

	cmd.In = strings.NewReader("y\n")
	out.Reset()
	if err := cmd.Run([]string{"force", "2"}); err != nil {
		t.Fatalf("force confirmed: %v", err)
	}
	if !strings.Contains(out.String(), "forced to 2") {
		t.Errorf("confirmed force output:\n%s", out.String())
	}

	db, err := OpenDB(cmd.DBPath)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()
	version, _, err := db.MigrateVersion(mustMigrations(t))
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}

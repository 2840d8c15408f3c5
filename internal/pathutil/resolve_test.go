package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/inputs/a.ct", home + "/inputs/a.ct"},
		{"~user/a.ct", "~user/a.ct"},
		{"/tmp/a.ct", "/tmp/a.ct"},
		{"a.ct", "a.ct"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveAbsolutePathMissingTail(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	got, err := ResolveAbsolutePath(filepath.Join(dir, "missing", "a.ct"))
	if err != nil {
		t.Fatalf("ResolveAbsolutePath() error: %v", err)
	}
	if want := filepath.Join(dir, "missing", "a.ct"); got != want {
		t.Errorf("ResolveAbsolutePath() = %q, want %q", got, want)
	}
}

func TestResolveAbsolutePathSymlink(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "real.ct")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.ct")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := ResolveAbsolutePath(link)
	if err != nil {
		t.Fatalf("ResolveAbsolutePath() error: %v", err)
	}
	if got != target {
		t.Errorf("ResolveAbsolutePath() = %q, want %q", got, target)
	}
}

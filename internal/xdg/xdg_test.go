package xdg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDir_UsesXDGConfigHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, AppName); dir != want {
		t.Fatalf("ConfigDir = %q, want %q", dir, want)
	}
	fi, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !fi.IsDir() {
		t.Fatal("config dir is not a directory")
	}
}

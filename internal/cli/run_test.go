package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repofan/internal/config"
)

// chdir is a stand-in for t.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestRunProxyRejectsUnsupportedCommand(t *testing.T) {
	chdir(t, t.TempDir())
	if code := runProxy("index", nil); code != 3 {
		t.Errorf("runProxy(index) = %d, want 3", code)
	}
}

func TestRunProxyRequiresProxyRecord(t *testing.T) {
	// A supported command in a directory that was never initialized must
	// fail pre-flight, before any subprocess is spawned.
	chdir(t, t.TempDir())
	if code := runProxy("status", nil); code != 3 {
		t.Errorf("runProxy(status) without record = %d, want 3", code)
	}
}

func TestRunProxyRequiresMembers(t *testing.T) {
	root := t.TempDir()
	rec := config.ProxyRecord{ProxyMode: true}
	if err := rec.Save(root); err != nil {
		t.Fatal(err)
	}
	chdir(t, root)
	if code := runProxy("status", nil); code != 3 {
		t.Errorf("runProxy(status) with zero members = %d, want 3", code)
	}
}

func TestLoadProxyResolvesMembers(t *testing.T) {
	root := t.TempDir()
	rec := config.ProxyRecord{ProxyMode: true, Repositories: []string{"svc/api", "web"}}
	if err := rec.Save(root); err != nil {
		t.Fatal(err)
	}
	chdir(t, root)

	repos, _, code := loadProxy()
	if code != 0 {
		t.Fatalf("loadProxy code = %d, want 0", code)
	}
	if len(repos) != 2 {
		t.Fatalf("resolved %d repos, want 2", len(repos))
	}
	if repos[0].Name != "svc/api" || !strings.HasSuffix(repos[0].Path, filepath.Join("svc", "api")) {
		t.Errorf("repos[0] = %+v", repos[0])
	}
}

func TestSetBuildInfo(t *testing.T) {
	SetBuildInfo("1.2.3", "abc1234", "2026-08-23")
	version, commit, date := BuildInfo()
	if version != "1.2.3" || commit != "abc1234" || date != "2026-08-23" {
		t.Errorf("BuildInfo() = %s %s %s", version, commit, date)
	}
	if !strings.Contains(rootCmd.Version, "1.2.3 (abc1234)") {
		t.Errorf("rootCmd.Version = %q", rootCmd.Version)
	}
}

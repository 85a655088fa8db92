package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDotEnv_MissingFilesAreIgnored(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, ".env"), filepath.Join(dir, ".env.local")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
}

func TestLoadDotEnv_LoadsValuesAndRespectsExistingEnv(t *testing.T) {
	t.Setenv("FV_DOTENV_KEEP", "from-process")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := strings.Join([]string{
		"# comment",
		"FV_DOTENV_MAX=1024",
		`FV_DOTENV_QUOTED="a b c"`,
		"FV_DOTENV_KEEP=from-file",
		"export FV_DOTENV_EXPORTED=yes",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() {
		for _, k := range []string{"FV_DOTENV_MAX", "FV_DOTENV_QUOTED", "FV_DOTENV_EXPORTED"} {
			_ = os.Unsetenv(k)
		}
	})

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	want := map[string]string{
		"FV_DOTENV_MAX":      "1024",
		"FV_DOTENV_QUOTED":   "a b c",
		"FV_DOTENV_EXPORTED": "yes",
		"FV_DOTENV_KEEP":     "from-process",
	}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Fatalf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestLoadDotEnv_FirstFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, ".env.local")
	second := filepath.Join(dir, ".env")
	if err := os.WriteFile(first, []byte("FV_DOTENV_ORDER=local\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", first, err)
	}
	if err := os.WriteFile(second, []byte("FV_DOTENV_ORDER=base\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", second, err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("FV_DOTENV_ORDER") })

	if err := LoadDotEnv(first, second); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("FV_DOTENV_ORDER"); got != "local" {
		t.Fatalf("FV_DOTENV_ORDER = %q, want %q", got, "local")
	}
}

func TestLoadDotEnv_InvalidLineReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(`FV_DOTENV_BAD="unterminated`), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(path); err == nil {
		t.Fatalf("LoadDotEnv() error = nil, want non-nil")
	}
}

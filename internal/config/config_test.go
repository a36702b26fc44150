package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubforge/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "dubforge", "projects")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "dubforge") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Languages.Target != "km" {
		t.Fatalf("unexpected target language: %q", cfg.Languages.Target)
	}
	if cfg.Transcription.Model != "small" {
		t.Fatalf("unexpected model: %q", cfg.Transcription.Model)
	}
	if cfg.Translation.MaxAttempts != 3 || cfg.Translation.RetryDelaySeconds != 2 {
		t.Fatalf("unexpected translation retry bounds: %+v", cfg.Translation)
	}
	if cfg.Synthesis.MaxAttempts != 5 || cfg.Synthesis.InitialDelaySeconds != 1 {
		t.Fatalf("unexpected synthesis retry bounds: %+v", cfg.Synthesis)
	}
	if cfg.Synthesis.RequestSpacingMS != 500 {
		t.Fatalf("unexpected request spacing: %d", cfg.Synthesis.RequestSpacingMS)
	}
	if cfg.Export.OriginalVolume != 0.3 || !cfg.Export.DuckOriginal {
		t.Fatalf("unexpected export mix settings: %+v", cfg.Export)
	}
	if !cfg.Export.AllowHardware {
		t.Fatal("expected hardware encoding allowed by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("directory %q not created: %v", dir, err)
		}
	}
}

func TestLoadParsesFileAndFillsGaps(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, "config.toml")
	content := `
[languages]
target = "FR"

[translation]
max_attempts = 5

[export]
original_volume = 0.8
allow_hardware = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Languages.Target != "fr" {
		t.Fatalf("target not lowercased: %q", cfg.Languages.Target)
	}
	if cfg.Translation.MaxAttempts != 5 {
		t.Fatalf("file override lost: %d", cfg.Translation.MaxAttempts)
	}
	if cfg.Translation.RetryDelaySeconds != 2 {
		t.Fatalf("unset key must keep default: %d", cfg.Translation.RetryDelaySeconds)
	}
	if cfg.Export.OriginalVolume != 0.8 || cfg.Export.AllowHardware {
		t.Fatalf("export overrides lost: %+v", cfg.Export)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cases := map[string]string{
		"volume":  "[export]\noriginal_volume = 1.5\n",
		"format":  "[logging]\nformat = \"xml\"\n",
		"level":   "[logging]\nlevel = \"verbose\"\n",
		"retries": "[translation]\nmax_attempts = 50\n",
	}
	for name, content := range cases {
		path := filepath.Join(tempHome, name+".toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, _, err := config.Load(path); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(tempHome, ".config", "dubforge", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[synthesis]") {
		t.Fatal("sample missing synthesis section")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("sample file not detected")
	}
	if cfg.Languages.Target != config.Default().Languages.Target {
		t.Fatalf("sample changed defaults: %q", cfg.Languages.Target)
	}
}

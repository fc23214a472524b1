package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ipmgraph/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRootPath(t *testing.T) {
	t.Setenv(EnvRoot, "")
	if got := RootPath(); got != DefaultRootPath {
		t.Errorf("expected default root, got %s", got)
	}
	t.Setenv(EnvRoot, "/srv/packages/demo")
	if got := RootPath(); got != "/srv/packages/demo" {
		t.Errorf("expected env root, got %s", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Profile != "basic" {
		t.Errorf("expected basic profile, got %s", cfg.Profile)
	}
	algs, err := cfg.Algorithms()
	if err != nil {
		t.Fatal(err)
	}
	if len(algs) != 2 || algs[0] != domain.SHA1 || algs[1] != domain.MD5 {
		t.Errorf("expected SHA-1 and MD5, got %v", algs)
	}
	if cfg.Assign.SearchLimit != DefaultSearchLimit || DefaultSearchLimit <= 0 {
		t.Errorf("expected a bounded type search by default, got %d", cfg.Assign.SearchLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing profile",
			modify:  func(c *Config) { c.Profile = "" },
			wantErr: true,
		},
		{
			name:    "unknown algorithm",
			modify:  func(c *Config) { c.Scan.Algorithms = []string{"CRC32"} },
			wantErr: true,
		},
		{
			name:    "no workers",
			modify:  func(c *Config) { c.Scan.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "negative search limit",
			modify:  func(c *Config) { c.Assign.SearchLimit = -1 },
			wantErr: true,
		},
		{
			name:    "unknown export format",
			modify:  func(c *Config) { c.Export.Format = "rdfxml" },
			wantErr: true,
		},
		{
			name:    "blake3 allowed",
			modify:  func(c *Config) { c.Scan.Algorithms = []string{"BLAKE3"} },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		Profile: "johnny-decimal",
		Scan:    ScanConfig{Workers: 8, Ignore: []string{"*.tmp"}},
		Watch:   WatchConfig{Debounce: time.Second},
	})

	if cfg.Profile != "johnny-decimal" {
		t.Errorf("profile not merged: %s", cfg.Profile)
	}
	if cfg.Scan.Workers != 8 {
		t.Errorf("workers not merged: %d", cfg.Scan.Workers)
	}
	if len(cfg.Scan.Algorithms) != 2 {
		t.Error("zero-valued fields must not override defaults")
	}
	if cfg.Export.Format != "turtle" {
		t.Errorf("export format overridden: %s", cfg.Export.Format)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("debounce not merged: %v", cfg.Watch.Debounce)
	}

	cfg.Merge(nil)
}

func TestLoader_Layers(t *testing.T) {
	home := t.TempDir()
	userPath := filepath.Join(home, "config.yaml")
	user := &Config{Profile: "johnny-decimal", Scan: ScanConfig{Workers: 2}}
	if err := user.SaveToFile(userPath); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	projectYAML := "scan:\n  workers: 6\nexport:\n  format: ntriples\n"
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(projectYAML), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvProfile, "")
	t.Setenv(EnvStore, "/tmp/ipm.db")
	t.Setenv(EnvNamespace, "")

	cfg, err := NewLoader(quietLogger(), WithUserConfigPath(userPath)).Load(nested)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Profile != "johnny-decimal" {
		t.Errorf("user layer lost: profile %s", cfg.Profile)
	}
	if cfg.Scan.Workers != 6 {
		t.Errorf("project layer should win: workers %d", cfg.Scan.Workers)
	}
	if cfg.Export.Format != "ntriples" {
		t.Errorf("project export format lost: %s", cfg.Export.Format)
	}
	if cfg.Store.Path != "/tmp/ipm.db" {
		t.Errorf("env layer lost: store %s", cfg.Store.Path)
	}

	t.Setenv(EnvProfile, "custom.yaml")
	cfg, err = NewLoader(quietLogger(), WithUserConfigPath(userPath)).Load(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != "custom.yaml" {
		t.Errorf("env should win over files: %s", cfg.Profile)
	}
}

func TestLoader_InvalidProjectConfig(t *testing.T) {
	project := t.TempDir()
	bad := "scan:\n  workers: -3\n"
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvProfile, "")
	_, err := NewLoader(quietLogger(), WithUserConfigPath(filepath.Join(project, "none.yaml"))).Load(project)
	if err == nil {
		t.Error("expected validation error for negative workers")
	}
}

func TestFindProjectConfig_None(t *testing.T) {
	if got := FindProjectConfig(t.TempDir()); got != "" {
		t.Skipf("found unrelated config %s", got)
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Fetch.MaxBytes != 5132289 {
		t.Errorf("Fetch.MaxBytes = %d, want 5132289", cfg.Fetch.MaxBytes)
	}
	if cfg.Fetch.ProxyPrefix != "" {
		t.Errorf("Fetch.ProxyPrefix = %q, want empty", cfg.Fetch.ProxyPrefix)
	}
	if cfg.Cache.MaxEntries != 0 {
		t.Errorf("Cache.MaxEntries = %d, want 0 (unbounded)", cfg.Cache.MaxEntries)
	}
	if cfg.Grid.ViewTTL != 5*time.Minute {
		t.Errorf("Grid.ViewTTL = %v, want 5m", cfg.Grid.ViewTTL)
	}
	if !cfg.Rate.Enabled {
		t.Error("Rate.Enabled = false, want true")
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"FETCH_MAX_BYTES":       "1024",
		"FETCH_TIMEOUT":         "5s",
		"FETCH_RATE_PER_SECOND": "2.5",
		"GRID_MAX_ROWS":         "50",
		"RATE_LIMIT_ENABLED":    "false",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Fetch.MaxBytes != 1024 {
		t.Errorf("Fetch.MaxBytes = %d, want 1024", cfg.Fetch.MaxBytes)
	}
	if cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("Fetch.Timeout = %v, want 5s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.RatePerSecond != 2.5 {
		t.Errorf("Fetch.RatePerSecond = %v, want 2.5", cfg.Fetch.RatePerSecond)
	}
	if cfg.Grid.MaxRows != 50 {
		t.Errorf("Grid.MaxRows = %d, want 50", cfg.Grid.MaxRows)
	}
	if cfg.Rate.Enabled {
		t.Error("Rate.Enabled = true, want false")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"CORS_PROXY": "https://proxy/?url="}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Fetch.ProxyPrefix != "https://proxy/?url=" {
		t.Errorf("Fetch.ProxyPrefix = %q", cfg.Fetch.ProxyPrefix)
	}

	cfg, err = LoadFrom(env(map[string]string{
		"CORS_PROXY":         "https://alt/?u=",
		"FETCH_PROXY_PREFIX": "https://primary/?u=",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Fetch.ProxyPrefix != "https://primary/?u=" {
		t.Errorf("primary variable should win, got %q", cfg.Fetch.ProxyPrefix)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"SERVER_PORT":           "eighty",
		"FETCH_TIMEOUT":         "soon",
		"FETCH_RATE_PER_SECOND": "fast",
		"RATE_LIMIT_ENABLED":    "maybe",
	}
	for k, v := range tests {
		_, err := LoadFrom(env(map[string]string{k: v}))
		if err == nil {
			t.Errorf("%s=%q: expected error", k, v)
			continue
		}
		if !strings.Contains(err.Error(), k) {
			t.Errorf("%s=%q: error %q should name the variable", k, v, err)
		}
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"TRUSTED_PROXIES": " 10.0.0.0/8 , ,192.168.0.0/16",
		"API_KEYS":        "k1,k2",
		"REQUIRE_API_KEY": "true",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	want := []string{"10.0.0.0/8", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(want) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, want)
	}
	for i := range want {
		if cfg.Security.TrustedProxies[i] != want[i] {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], want[i])
		}
	}
	if len(cfg.Security.APIKeys) != 2 {
		t.Errorf("APIKeys = %v", cfg.Security.APIKeys)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"zero max bytes", map[string]string{"FETCH_MAX_BYTES": "-1"}, "FETCH_MAX_BYTES"},
		{"negative cache", map[string]string{"CACHE_MAX_ENTRIES": "-5"}, "CACHE_MAX_ENTRIES"},
		{"fast refresh", map[string]string{"GRID_REFRESH_INTERVAL": "100ms"}, "GRID_REFRESH_INTERVAL"},
		{"api key required", map[string]string{"REQUIRE_API_KEY": "true"}, "API_KEYS"},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.env))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{
		"SERVER_PORT": "0",
		"LOG_LEVEL":   "loud",
	}))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 3000, ":3000"},
		{"::1", 8080, "[::1]:8080"},
	}
	for _, tt := range tests {
		c := ServerConfig{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksAPIKeys(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"REQUIRE_API_KEY": "true",
		"API_KEYS":        "supersecret",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	s := cfg.String()
	if strings.Contains(s, "supersecret") {
		t.Errorf("String() leaks API key: %s", s)
	}
	if !strings.Contains(s, "[1 MASKED]") {
		t.Errorf("String() = %s, want masked key count", s)
	}
}

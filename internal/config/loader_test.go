package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Name != DefaultName {
		t.Errorf("Name = %q, want %q", cfg.Name, DefaultName)
	}
	if cfg.LoadTest.Workers != 10 {
		t.Errorf("Workers = %d, want 10", cfg.LoadTest.Workers)
	}
	if cfg.LoadTest.Iterations != 100 {
		t.Errorf("Iterations = %d, want 100", cfg.LoadTest.Iterations)
	}
	if cfg.Provision.Mode != ProvisionLocal {
		t.Errorf("Provision.Mode = %q, want %q", cfg.Provision.Mode, ProvisionLocal)
	}
	if cfg.Report.Dir != DefaultReportDir {
		t.Errorf("Report.Dir = %q, want %q", cfg.Report.Dir, DefaultReportDir)
	}
	if !cfg.Report.HTMLEnabled() || !cfg.Report.JSONEnabled() {
		t.Error("reports should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestParseConfig_YAML(t *testing.T) {
	data := []byte(`
name: quarkus-api
server:
  addr: ":9090"
  readTimeout: 5s
logging:
  level: debug
  format: json
loadTest:
  workers: 4
  iterations: 25
  timeout: 30s
  requestTimeout: 2s
provision:
  mode: docker
  image: quarkus-api
  containerPort: 8080
  startupTimeout: 90s
report:
  dir: out
  html: false
`)

	cfg, err := ParseConfig(data, "perf.yaml")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.Name != "quarkus-api" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if time.Duration(cfg.Server.ReadTimeout) != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Provision.Image != "quarkus-api" || cfg.Provision.Mode != ProvisionDocker {
		t.Errorf("Provision = %+v", cfg.Provision)
	}
	if cfg.Report.HTMLEnabled() {
		t.Error("HTMLEnabled() = true, want false")
	}
	if !cfg.Report.JSONEnabled() {
		t.Error("JSONEnabled() = false, want true")
	}

	rc := cfg.RunnerConfig("http://127.0.0.1:1234/")
	if rc.Workers != 4 || rc.Iterations != 25 {
		t.Errorf("RunnerConfig() = %+v", rc)
	}
	if rc.Timeout != 30*time.Second || rc.RequestTimeout != 2*time.Second {
		t.Errorf("RunnerConfig() timeouts = %v/%v", rc.Timeout, rc.RequestTimeout)
	}
	if rc.TargetURL != "http://127.0.0.1:1234/" {
		t.Errorf("RunnerConfig().TargetURL = %q", rc.TargetURL)
	}
}

func TestParseConfig_JSON(t *testing.T) {
	data := []byte(`{
		"loadTest": {"workers": 2, "targetUrl": "http://localhost:8080/"}
	}`)

	cfg, err := ParseConfig(data, "perf.json")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.LoadTest.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.LoadTest.Workers)
	}
	if cfg.LoadTest.Iterations != DefaultIterations {
		t.Errorf("Iterations = %d, want default %d", cfg.LoadTest.Iterations, DefaultIterations)
	}
	if cfg.Provision.Mode != ProvisionStatic {
		t.Errorf("Provision.Mode = %q, want static when targetUrl is set", cfg.Provision.Mode)
	}
	if cfg.Provision.URL != "http://localhost:8080/" {
		t.Errorf("Provision.URL = %q", cfg.Provision.URL)
	}
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig([]byte(""), "empty.yaml")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.LoadTest.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.LoadTest.Workers, DefaultWorkers)
	}
}

func TestParseConfig_SchemaViolations(t *testing.T) {
	data := []byte(`
loadTest:
  workers: 0
  iterations: "many"
  timeout: soon
provision:
  mode: kubernetes
unknown: true
`)

	_, err := ParseConfig(data, "bad.yaml")
	if err == nil {
		t.Fatal("ParseConfig() error = nil, want schema errors")
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error %T is not *ValidationErrors: %v", err, err)
	}

	want := map[string]bool{
		"loadTest.workers":    false,
		"loadTest.iterations": false,
		"loadTest.timeout":    false,
		"provision.mode":      false,
	}
	for _, f := range verrs.Fields() {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("missing schema error for %s; got %v", field, verrs.Fields())
		}
	}
}

func TestParseConfig_SemanticViolations(t *testing.T) {
	data := []byte(`
provision:
  mode: static
  url: "ftp://example.com"
logging:
  output: file
`)

	_, err := ParseConfig(data, "bad.yaml")
	if err == nil {
		t.Fatal("ParseConfig() error = nil, want validation errors")
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error %T is not *ValidationErrors", err)
	}
	if len(verrs.Errors) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(verrs.Errors), verrs)
	}
}

func TestValidate_LogLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		cfg := Default()
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with level %q = %v, want nil", level, err)
		}
	}

	cfg := Default()
	cfg.Logging.Level = "verbose"
	err := cfg.Validate()
	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() with level verbose = %v, want *ValidationErrors", err)
	}
	if fields := verrs.Fields(); len(fields) != 1 || fields[0] != "logging.level" {
		t.Errorf("fields = %v, want [logging.level]", fields)
	}
}

func TestParseConfig_InvalidYAML(t *testing.T) {
	if _, err := ParseConfig([]byte("loadTest: [unclosed"), "bad.yaml"); err == nil {
		t.Error("ParseConfig() error = nil for invalid YAML")
	}
	if _, err := ParseConfig([]byte("{"), "bad.json"); err == nil {
		t.Error("ParseConfig() error = nil for invalid JSON")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perf.yml")
	if err := os.WriteFile(path, []byte("name: from-file\nloadTest:\n  workers: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Name != "from-file" || cfg.LoadTest.Workers != 3 {
		t.Errorf("LoadConfig() = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() error = nil for missing file")
	}
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	var d Duration
	if err := d.UnmarshalJSON([]byte(`"1m30s"`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if time.Duration(d) != 90*time.Second {
		t.Errorf("Duration = %v, want 1m30s", d)
	}

	b, _ := d.MarshalJSON()
	if string(b) != `"1m30s"` {
		t.Errorf("MarshalJSON() = %s", b)
	}

	if d.GetDuration(time.Second) != 90*time.Second {
		t.Error("GetDuration() ignored the set value")
	}
	if Duration(0).GetDuration(time.Second) != time.Second {
		t.Error("GetDuration() did not fall back to default")
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
log:
  level: debug
  format: json
allow_missing_import_locations: true
jobs: 3
color: never
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := &Config{
		Log:                         LogConfig{Level: "debug", Format: "json"},
		AllowMissingImportLocations: true,
		Jobs:                        3,
		Color:                       ColorNever,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyAppliesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := &Config{
		Log:   LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Jobs:  runtime.GOMAXPROCS(0),
		Color: ColorAuto,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, Default()); diff != "" {
		t.Fatalf("Default() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		fields []string
	}{
		{name: "unknown level", data: "log: {level: loud}", fields: []string{"log.level"}},
		{name: "unknown format", data: "log: {format: xml}", fields: []string{"log.format"}},
		{name: "negative jobs", data: "jobs: -2", fields: []string{"jobs"}},
		{name: "bad color", data: "color: sometimes", fields: []string{"color"}},
		{name: "several", data: "jobs: -1\ncolor: x", fields: []string{"jobs", "color"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Parse() error = %v, want ValidationError", err)
			}
			var got []string
			for _, fe := range verr.Errors {
				got = append(got, fe.Field)
			}
			if diff := cmp.Diff(tt.fields, got); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("threads: 4"))
	if err == nil || !strings.Contains(err.Error(), "parse configuration") {
		t.Fatalf("Parse() error = %v, want unknown field error", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xsdcorpus.yaml")
	if err := os.WriteFile(path, []byte("jobs: 2\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Jobs != 2 || cfg.Log.Level != DefaultLogLevel {
		t.Fatalf("Load() = %+v, want jobs 2 with defaults", cfg)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}

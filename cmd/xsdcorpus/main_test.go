package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const head = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return dir
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := runWithArgs(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

var schemas = map[string]string{
	"ok.xsd": head + ` targetNamespace="urn:ok" xmlns:t="urn:ok">
  <xs:include schemaLocation="sub/types.xsd"/>
  <xs:element name="root" type="t:Root"/>
</xs:schema>`,
	"sub/types.xsd": head + ` targetNamespace="urn:ok">
  <xs:complexType name="Root"><xs:sequence>
    <xs:element name="a" type="xs:string" minOccurs="0"/>
    <xs:element name="b" type="xs:int"/>
  </xs:sequence></xs:complexType>
</xs:schema>`,
	"warn.xsd": head + `>
  <xs:simpleType name="S"><xs:restriction base="xs:string"><xs:length value="10"/></xs:restriction></xs:simpleType>
  <xs:simpleType name="R"><xs:restriction base="S"><xs:length value="0"/></xs:restriction></xs:simpleType>
</xs:schema>`,
	"ambiguous.xsd": head + `>
  <xs:complexType name="T"><xs:sequence>
    <xs:element name="a" minOccurs="0"/><xs:element name="a"/>
  </xs:sequence></xs:complexType>
</xs:schema>`,
}

func TestCompile(t *testing.T) {
	dir := writeFiles(t, schemas)
	code, stdout, stderr := run("compile", filepath.Join(dir, "ok.xsd"))
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr)
	}
	for _, want := range []string{"namespaces      3", "complex types", "diagnostics     0"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestCompileReportsDiagnostics(t *testing.T) {
	dir := writeFiles(t, schemas)
	code, stdout, stderr := run("compile", filepath.Join(dir, "warn.xsd"))
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stderr, "error: [length-valid-restriction]") {
		t.Fatalf("stderr = %q, want length-valid-restriction", stderr)
	}
	if strings.Contains(stderr, "\x1b[") {
		t.Fatalf("stderr is colored on a non-terminal writer: %q", stderr)
	}
	if !strings.Contains(stdout, "diagnostics     1") {
		t.Fatalf("stdout = %q, want one diagnostic counted", stdout)
	}

	code, _, stderr = run("compile", filepath.Join(dir, "ambiguous.xsd"))
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "fatal: [cos-nonambig]") {
		t.Fatalf("stderr = %q, want fatal cos-nonambig", stderr)
	}
}

func TestCompileColorAlways(t *testing.T) {
	dir := writeFiles(t, schemas)
	cfg := filepath.Join(dir, "xsdcorpus.yaml")
	if err := os.WriteFile(cfg, []byte("color: always\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, _, stderr := run("compile", "--config", cfg, filepath.Join(dir, "warn.xsd"))
	if !strings.Contains(stderr, ansiRed+"error"+ansiReset) {
		t.Fatalf("stderr = %q, want colored severity", stderr)
	}
}

func TestDump(t *testing.T) {
	dir := writeFiles(t, schemas)
	code, stdout, stderr := run("dump", filepath.Join(dir, "ok.xsd"))
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr)
	}
	for _, want := range []string{
		`namespace "urn:ok"`,
		"element {urn:ok}root type {urn:ok}Root",
		"complexType {urn:ok}Root",
		"sequence fixture=false",
		"head[0] = [a? b] back=0",
		"head[2] = [$]",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("dump missing %q:\n%s", want, stdout)
		}
	}
}

func TestCheck(t *testing.T) {
	dir := writeFiles(t, schemas)
	paths := []string{
		filepath.Join(dir, "ok.xsd"),
		filepath.Join(dir, "ambiguous.xsd"),
		filepath.Join(dir, "missing.xsd"),
		filepath.Join(dir, "warn.xsd"),
	}
	code, stdout, stderr := run(append([]string{"check", "--jobs", "2"}, paths...)...)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 4 {
		t.Fatalf("status lines = %d, want 4:\n%s", len(lines), stdout)
	}
	wants := []string{": ok (0 diagnostics)", ": failed (1 diagnostics)", ": failed: ", ": ok (1 diagnostics)"}
	for i, want := range wants {
		if !strings.HasPrefix(lines[i], paths[i]) || !strings.Contains(lines[i], want) {
			t.Fatalf("line %d = %q, want %s%s", i, lines[i], paths[i], want)
		}
	}
	if !strings.Contains(stderr, "cos-nonambig") || !strings.Contains(stderr, "length-valid-restriction") {
		t.Fatalf("stderr = %q, want diagnostics of every root", stderr)
	}

	code, stdout, _ = run("check", filepath.Join(dir, "ok.xsd"), filepath.Join(dir, "warn.xsd"))
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stdout: %s)", code, stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no schemas", args: []string{"compile"}, want: "at least one schema file is required"},
		{name: "unknown flag", args: []string{"compile", "--nope", "a.xsd"}, want: "unknown flag"},
		{name: "bad jobs", args: []string{"check", "--jobs", "-1", "a.xsd"}, want: "jobs"},
		{name: "bad log level", args: []string{"compile", "--log-level", "loud", "a.xsd"}, want: "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(tt.args...)
			if code != 2 {
				t.Fatalf("exit code = %d, want 2 (stderr: %s)", code, stderr)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Fatalf("stderr = %q, want %q", stderr, tt.want)
			}
		})
	}
}

func TestMissingConfig(t *testing.T) {
	code, _, stderr := run("compile", "--config", filepath.Join(t.TempDir(), "none.yaml"), "a.xsd")
	if code != 1 || !strings.Contains(stderr, "read configuration file") {
		t.Fatalf("exit = %d, stderr = %q, want configuration read error", code, stderr)
	}
}

func TestDebugLogging(t *testing.T) {
	dir := writeFiles(t, schemas)
	_, _, stderr := run("compile", "--log-level", "debug", filepath.Join(dir, "ok.xsd"))
	if !strings.Contains(stderr, "corpus compiled") {
		t.Fatalf("stderr = %q, want debug pass logging", stderr)
	}
}

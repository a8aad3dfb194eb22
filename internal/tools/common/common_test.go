package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseEnvLine(t *testing.T) {
	cases := []struct {
		line string
		key  string
		val  string
		ok   bool
	}{
		{"", "", "", false},
		{"# comment", "", "", false},
		{"NOEQUALS", "", "", false},
		{"A=1", "A", "1", true},
		{"export B = two ", "B", "two", true},
		{`C="quoted # kept"`, "C", "quoted # kept", true},
		{"D='single'", "D", "single", true},
		{"E=value # trailing", "E", "value", true},
		{"F=", "F", "", true},
	}
	for _, tc := range cases {
		k, v, ok := parseEnvLine(tc.line)
		if ok != tc.ok || k != tc.key || v != tc.val {
			t.Fatalf("parseEnvLine(%q) = %q %q %v", tc.line, k, v, ok)
		}
	}
}

func TestLoadEnvFileKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "HASHEBOOKS_TEST_NEW=from-file\nHASHEBOOKS_TEST_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("HASHEBOOKS_TEST_SET", "from-process")
	t.Setenv("HASHEBOOKS_TEST_NEW", "")
	if err := os.Unsetenv("HASHEBOOKS_TEST_NEW"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("HASHEBOOKS_TEST_NEW"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("HASHEBOOKS_TEST_SET"); got != "from-process" {
		t.Fatalf("existing value overwritten: %q", got)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestWriteCIResult(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCIResult(&buf, NewCIResult(false, "seed apply", []string{"a"}, errors.New("boom"))); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got CIResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OK || got.Title != "seed apply" || got.Error != "boom" || len(got.Details) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

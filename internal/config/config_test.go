package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Check identity
	if cfg.Identity.Name != "John Doe" {
		t.Errorf("Identity.Name = %q, want %q", cfg.Identity.Name, "John Doe")
	}
	if cfg.Identity.RegNo != "REG12347" {
		t.Errorf("Identity.RegNo = %q, want %q", cfg.Identity.RegNo, "REG12347")
	}
	if cfg.Identity.Email != "john@example.com" {
		t.Errorf("Identity.Email = %q, want %q", cfg.Identity.Email, "john@example.com")
	}

	// Check endpoint and timeout
	if cfg.RegistrationURL != DefaultRegistrationURL {
		t.Errorf("RegistrationURL = %q, want %q", cfg.RegistrationURL, DefaultRegistrationURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, 15*time.Second)
	}

	// Check answers
	if cfg.Answers.Odd != DefaultAnswerOdd {
		t.Errorf("Answers.Odd = %q, want default", cfg.Answers.Odd)
	}
	if cfg.Answers.Even != DefaultAnswerEven {
		t.Errorf("Answers.Even = %q, want default", cfg.Answers.Even)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "defaults when nothing is set",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Identity != DefaultConfig().Identity {
					t.Errorf("Identity = %+v, want defaults", cfg.Identity)
				}
			},
		},
		{
			name: "environment overrides identity",
			env: map[string]string{
				EnvName:  "Test",
				EnvRegNo: " REG12348 ",
				EnvEmail: "t@x.com",
			},
			check: func(t *testing.T, cfg *Config) {
				want := Identity{Name: "Test", RegNo: "REG12348", Email: "t@x.com"}
				if cfg.Identity != want {
					t.Errorf("Identity = %+v, want %+v", cfg.Identity, want)
				}
			},
		},
		{
			name: "registration url and timeout",
			env: map[string]string{
				EnvRegistrationURL: "http://localhost:8080/register",
				EnvRequestTimeout:  "3s",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.RegistrationURL != "http://localhost:8080/register" {
					t.Errorf("RegistrationURL = %q", cfg.RegistrationURL)
				}
				if cfg.RequestTimeout != 3*time.Second {
					t.Errorf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
				}
			},
		},
		{
			name: "answer overrides",
			env: map[string]string{
				EnvAnswerOdd:  "SELECT 1;",
				EnvAnswerEven: "SELECT 2;",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Answers.Odd != "SELECT 1;" || cfg.Answers.Even != "SELECT 2;" {
					t.Errorf("Answers = %+v", cfg.Answers)
				}
			},
		},
		{
			name:    "invalid timeout",
			env:     map[string]string{EnvRequestTimeout: "soon"},
			wantErr: EnvRequestTimeout,
		},
		{
			name:    "non-positive timeout",
			env:     map[string]string{EnvRequestTimeout: "0s"},
			wantErr: "request timeout must be positive",
		},
		{
			name:    "missing answers file",
			env:     map[string]string{EnvAnswersFile: "/does/not/exist.yaml"},
			wantErr: "failed to open answers file",
		},
		{
			name:    "missing explicit env file",
			env:     map[string]string{EnvEnvFile: "/does/not/exist.env"},
			wantErr: "failed to read env file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(envMap(tt.env))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() error = nil, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Load() error = %v, want error containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := writeFile(t, "qualifier.env", strings.Join([]string{
		EnvName + "=From File",
		EnvRegNo + "=REG00010",
		EnvEmail + "=file@example.com",
	}, "\n"))

	cfg, err := Load(envMap(map[string]string{
		EnvEnvFile: path,
		EnvEmail:   "env@example.com",
	}))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	want := Identity{Name: "From File", RegNo: "REG00010", Email: "env@example.com"}
	if cfg.Identity != want {
		t.Errorf("Identity = %+v, want %+v", cfg.Identity, want)
	}
}

func TestLoad_AnswersFile(t *testing.T) {
	path := writeFile(t, "answers.yaml", "odd: SELECT 'odd';\neven: SELECT 'even';\n")

	cfg, err := Load(envMap(map[string]string{
		EnvAnswersFile: path,
		EnvAnswerEven:  "SELECT 'env';",
	}))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Answers.Odd != "SELECT 'odd';" {
		t.Errorf("Answers.Odd = %q, want value from file", cfg.Answers.Odd)
	}
	if cfg.Answers.Even != "SELECT 'env';" {
		t.Errorf("Answers.Even = %q, want value from environment", cfg.Answers.Even)
	}
}

func TestDecodeAnswers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOdd string
		wantErr bool
	}{
		{name: "both keys", input: "odd: A\neven: B\n", wantOdd: "A"},
		{name: "only even", input: "even: B\n", wantOdd: ""},
		{name: "empty document", input: "", wantOdd: ""},
		{name: "unknown key", input: "odd: A\nthird: C\n", wantErr: true},
		{name: "not a mapping", input: "- A\n- B\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAnswers(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeAnswers() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Odd != tt.wantOdd {
				t.Errorf("Odd = %q, want %q", got.Odd, tt.wantOdd)
			}
		})
	}
}

func TestLoadAnswers_MissingFile(t *testing.T) {
	_, err := LoadAnswers(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadAnswers() error = %v, want fs.ErrNotExist", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RegistrationURL = " "
	cfg.Answers.Even = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"registration URL is required", "even registration numbers"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, want it to mention %q", err, want)
		}
	}
}

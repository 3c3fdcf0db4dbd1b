package auth

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestResolve_FromEnvironment(t *testing.T) {
	t.Setenv(DefaultEnvVar, "ghp_from_env")

	token, err := Resolve(Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if token != "ghp_from_env" {
		t.Errorf("token = %q, want ghp_from_env", token)
	}
}

func TestResolve_TrimsEnvironmentValue(t *testing.T) {
	t.Setenv(DefaultEnvVar, "  ghp_padded \n")

	token, err := Resolve(Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if token != "ghp_padded" {
		t.Errorf("token = %q, want ghp_padded", token)
	}
}

func TestResolve_CustomEnvVar(t *testing.T) {
	t.Setenv("GH_ENTERPRISE_TOKEN", "ghp_custom")

	token, err := Resolve(Options{EnvVar: "GH_ENTERPRISE_TOKEN"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if token != "ghp_custom" {
		t.Errorf("token = %q, want ghp_custom", token)
	}
}

func TestResolve_MissingNonInteractive(t *testing.T) {
	t.Setenv(DefaultEnvVar, "")

	_, err := Resolve(Options{Prompt: false})
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("Resolve() error = %v, want ErrMissingToken", err)
	}
}

func TestResolve_FromPrompt(t *testing.T) {
	t.Setenv(DefaultEnvVar, "")

	var promptOut bytes.Buffer
	token, err := Resolve(Options{
		Prompt: true,
		Input:  strings.NewReader("ghp_typed\n"),
		Output: &promptOut,
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if token != "ghp_typed" {
		t.Errorf("token = %q, want ghp_typed", token)
	}
	if !strings.Contains(promptOut.String(), "token") {
		t.Errorf("prompt text = %q, expected it to mention the token", promptOut.String())
	}
}

func TestResolve_PromptWithoutNewline(t *testing.T) {
	t.Setenv(DefaultEnvVar, "")

	token, err := Resolve(Options{
		Prompt: true,
		Input:  strings.NewReader("ghp_eof"),
		Output: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if token != "ghp_eof" {
		t.Errorf("token = %q, want ghp_eof", token)
	}
}

func TestResolve_EmptyPromptInput(t *testing.T) {
	t.Setenv(DefaultEnvVar, "")

	_, err := Resolve(Options{
		Prompt: true,
		Input:  strings.NewReader("\n"),
		Output: &bytes.Buffer{},
	})
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("Resolve() error = %v, want ErrMissingToken", err)
	}
}

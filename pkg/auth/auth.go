// Package auth resolves the bearer credential used to authenticate against
// the GitHub API. The token is an opaque string: it lives for the process
// lifetime, is never persisted, and never appears in log output.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/audittools/gh-audit-export/pkg/logging"
)

// DefaultEnvVar is the environment variable consulted first.
const DefaultEnvVar = "GITHUB_TOKEN"

// ErrMissingToken is returned when no credential can be resolved. It is
// reported before any network call is made.
var ErrMissingToken = errors.New("missing credential: set GITHUB_TOKEN or enter a token at the prompt")

// Options controls credential resolution.
type Options struct {
	// EnvVar overrides the environment variable name (default GITHUB_TOKEN).
	EnvVar string

	// Prompt allows falling back to an interactive prompt when the
	// environment variable is absent.
	Prompt bool

	// Input is the prompt source (default os.Stdin).
	Input io.Reader

	// Output is where the prompt text is written (default os.Stderr).
	Output io.Writer
}

// Resolve returns the bearer token from the environment, or from an
// interactive prompt when allowed. Fails fast with ErrMissingToken
// otherwise.
func Resolve(opts Options) (string, error) {
	logger := logging.NewLogger("auth")

	if opts.EnvVar == "" {
		opts.EnvVar = DefaultEnvVar
	}

	token := strings.TrimSpace(os.Getenv(opts.EnvVar))
	if token != "" {
		logger.Debug().Str("source", "env").Bool("token_present", true).Msg("Credential resolved")
		return token, nil
	}

	if !opts.Prompt {
		return "", ErrMissingToken
	}

	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	fmt.Fprint(opts.Output, "GitHub personal access token: ")

	line, err := bufio.NewReader(opts.Input).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read token: %w", err)
	}

	token = strings.TrimSpace(line)
	if token == "" {
		return "", ErrMissingToken
	}

	logger.Debug().Str("source", "prompt").Bool("token_present", true).Msg("Credential resolved")
	return token, nil
}

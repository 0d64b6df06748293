// Package secrets resolves the service account credentials and the bearer
// token at invocation time. Values are never cached between calls.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/enterprise/ga-view-proxy/internal/config"
)

// ErrSecretNotFound indicates the named secret is absent or empty
var ErrSecretNotFound = errors.New("secret not found")

// Provider looks up a secret value by name
type Provider interface {
	Get(ctx context.Context, name string) (string, error)
}

// New creates the provider selected by cfg.Source
func New(cfg config.SecretsConfig) (Provider, error) {
	switch cfg.Source {
	case "", config.SecretSourceEnv:
		return NewEnvProvider(), nil
	case config.SecretSourceSSM:
		provider, err := NewSSMProvider(cfg.Region, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown secrets source %q", cfg.Source)
	}
}

// EnvProvider reads secrets injected into the process environment, which is
// how Firebase and Netlify expose bound secrets to functions.
type EnvProvider struct {
	lookup func(string) (string, bool)
}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

func (p *EnvProvider) Get(_ context.Context, name string) (string, error) {
	value, ok := p.lookup(name)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return value, nil
}

// StaticProvider serves secrets from a fixed map
type StaticProvider map[string]string

func (p StaticProvider) Get(_ context.Context, name string) (string, error) {
	value, ok := p[name]
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return value, nil
}

// Chain returns the first value found across providers. Errors other than
// ErrSecretNotFound stop the search.
type Chain []Provider

func (c Chain) Get(ctx context.Context, name string) (string, error) {
	for _, p := range c {
		value, err := p.Get(ctx, name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}

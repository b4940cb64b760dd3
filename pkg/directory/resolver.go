// Package directory resolves the invoking operator's mail alias, used
// to build globally unique DNS labels for public addresses. A real
// identity lookup sits behind the Resolver interface; the bundled
// implementations cover lab config, environment, and OS user fallback.
package directory

import (
	"fmt"
	"os"

	"github.com/bgplab-net/bgplab/pkg/util"
)

// EnvAlias is the environment variable consulted by EnvResolver.
const EnvAlias = "BGPLAB_ALIAS"

// Resolver returns the operator's mail alias.
type Resolver interface {
	Alias() (string, error)
}

// Static returns a fixed alias (from the lab definition).
type Static string

func (s Static) Alias() (string, error) {
	if s == "" {
		return "", fmt.Errorf("directory: no alias configured")
	}
	return string(s), nil
}

// Env reads the alias from the BGPLAB_ALIAS environment variable.
type Env struct{}

func (Env) Alias() (string, error) {
	if v := os.Getenv(EnvAlias); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("directory: %s not set", EnvAlias)
}

// OSUser falls back to the login name of the invoking user.
type OSUser struct{}

func (OSUser) Alias() (string, error) {
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("directory: cannot determine OS user")
}

// Chain tries each resolver in order and returns the first alias that
// resolves and survives DNS-label sanitization.
type Chain []Resolver

func (c Chain) Alias() (string, error) {
	for _, r := range c {
		alias, err := r.Alias()
		if err != nil {
			continue
		}
		if sanitized := util.SanitizeDNSLabel(alias); sanitized != "" {
			return sanitized, nil
		}
	}
	return "", fmt.Errorf("directory: no resolver produced a usable alias")
}

// Default is the standard resolution order: lab config, environment,
// OS user.
func Default(configured string) Chain {
	return Chain{Static(configured), Env{}, OSUser{}}
}

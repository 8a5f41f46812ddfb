// Package gateway picks the display gateway for the running platform.
package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"displaymode/internal/display"
	"displaymode/internal/gateway/fixture"
)

const (
	BackendAuto    = "auto"
	BackendNative  = "native"
	BackendFixture = "fixture"
)

var (
	ErrNoFixture   = errors.New("fixture backend needs a fixture file")
	ErrUnsupported = errors.New("no native display backend for this platform")
)

// Open returns the gateway named by backend. Auto uses the fixture when a
// fixture path is given and the native gateway otherwise.
func Open(backend, fixturePath string, log zerolog.Logger) (display.Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendAuto:
		if fixturePath != "" {
			return openFixture(fixturePath, log)
		}
		return openNative(log)
	case BackendNative:
		return openNative(log)
	case BackendFixture:
		if fixturePath == "" {
			return nil, ErrNoFixture
		}
		return openFixture(fixturePath, log)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func openFixture(path string, log zerolog.Logger) (display.Gateway, error) {
	gw, err := fixture.Load(path, log.With().Str("component", "fixture").Logger())
	if err != nil {
		return nil, err
	}
	return gw, nil
}

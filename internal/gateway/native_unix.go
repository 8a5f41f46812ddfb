//go:build linux || freebsd || openbsd || netbsd

package gateway

import (
	"github.com/rs/zerolog"

	"displaymode/internal/display"
	"displaymode/internal/gateway/x11"
)

func openNative(log zerolog.Logger) (display.Gateway, error) {
	gw, err := x11.Open(log.With().Str("component", "randr").Logger())
	if err != nil {
		return nil, err
	}
	return gw, nil
}

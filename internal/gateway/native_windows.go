//go:build windows

package gateway

import (
	"github.com/rs/zerolog"

	"displaymode/internal/display"
	"displaymode/internal/gateway/win32"
)

func openNative(log zerolog.Logger) (display.Gateway, error) {
	gw, err := win32.Open(log.With().Str("component", "win32").Logger())
	if err != nil {
		return nil, err
	}
	return gw, nil
}

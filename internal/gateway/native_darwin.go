//go:build darwin && cgo

package gateway

import (
	"github.com/rs/zerolog"

	"displaymode/internal/display"
	"displaymode/internal/gateway/quartz"
)

func openNative(log zerolog.Logger) (display.Gateway, error) {
	gw, err := quartz.Open(log.With().Str("component", "quartz").Logger())
	if err != nil {
		return nil, err
	}
	return gw, nil
}

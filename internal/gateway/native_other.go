//go:build !linux && !freebsd && !openbsd && !netbsd && !windows && !(darwin && cgo)

package gateway

import (
	"github.com/rs/zerolog"

	"displaymode/internal/display"
)

func openNative(zerolog.Logger) (display.Gateway, error) {
	return nil, ErrUnsupported
}

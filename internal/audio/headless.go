//go:build !cgo

package audio

import "log/slog"

// Open returns a Silent player; this build has no audio device.
func Open(_ string, log *slog.Logger) (Player, error) {
	return Silent{Log: log}, nil
}

// Package audio plays the short sound cues the engines ask for.
package audio

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/appengine-ltd/bunker/internal/game"
)

// Player is a game.SoundPlayer that owns an audio device.
type Player interface {
	game.SoundPlayer
	Close() error
}

var cueExtensions = []string{".wav", ".ogg", ".mp3"}

// cuePath finds the file for a cue name under dir, trying each supported
// extension in turn.
func cuePath(dir, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if dir == "" || name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	for _, ext := range cueExtensions {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Silent logs cues instead of playing them.
type Silent struct {
	Log *slog.Logger
}

func (s Silent) Play(name string) {
	if s.Log != nil {
		s.Log.Debug("sound cue", "name", name)
	}
}

func (s Silent) Close() error { return nil }

var _ Player = Silent{}

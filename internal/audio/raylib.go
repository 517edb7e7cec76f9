//go:build cgo

package audio

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type raylibPlayer struct {
	dir    string
	log    *slog.Logger
	sounds map[string]rl.Sound
	miss   map[string]bool
}

// Open starts the raylib audio device and plays cues from dir. When no
// device comes up it falls back to Silent.
func Open(dir string, log *slog.Logger) (Player, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if dir == "" {
		return Silent{Log: log}, nil
	}
	rl.InitAudioDevice()
	if !rl.IsAudioDeviceReady() {
		log.Warn("audio device unavailable, sound disabled")
		return Silent{Log: log}, nil
	}
	return &raylibPlayer{
		dir:    dir,
		log:    log,
		sounds: make(map[string]rl.Sound),
		miss:   make(map[string]bool),
	}, nil
}

func (p *raylibPlayer) Play(name string) {
	snd, ok := p.sounds[name]
	if !ok {
		if p.miss[name] {
			return
		}
		path, found := cuePath(p.dir, name)
		if !found {
			p.miss[name] = true
			p.log.Debug("no file for sound cue", "name", name)
			return
		}
		snd = rl.LoadSound(path)
		if snd.FrameCount == 0 {
			p.miss[name] = true
			p.log.Warn("failed to load sound", "path", path)
			return
		}
		p.sounds[name] = snd
	}
	rl.PlaySound(snd)
}

func (p *raylibPlayer) Close() error {
	for name, snd := range p.sounds {
		rl.UnloadSound(snd)
		delete(p.sounds, name)
	}
	rl.CloseAudioDevice()
	return nil
}

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"Caustics/internal/logger"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"
)

const playerBufferLatency = 100 * time.Millisecond

var (
	contextOnce  sync.Once
	audioContext *audio.Context
	contextRate  int
)

// Player plays a loaded track on a loop, in step with its analyser.
type Player struct {
	player *audio.Player
}

// Play starts looped playback of the analyser's track and restarts the
// analyser clock so the bins follow what is heard. Only tracks loaded from a
// file can be played.
func Play(a *WAVAnalyser) (*Player, error) {
	if len(a.pcm) == 0 {
		return nil, errors.New("track has no decoded PCM")
	}
	contextOnce.Do(func() {
		audioContext = audio.NewContext(a.sampleRate)
		contextRate = a.sampleRate
	})
	if contextRate != a.sampleRate {
		return nil, fmt.Errorf("audio context runs at %d Hz, track at %d Hz", contextRate, a.sampleRate)
	}

	loop := audio.NewInfiniteLoop(bytes.NewReader(a.pcm), int64(len(a.pcm)))
	player, err := audioContext.NewPlayer(loop)
	if err != nil {
		return nil, fmt.Errorf("creating audio player: %w", err)
	}
	player.SetBufferSize(playerBufferLatency)
	player.Play()
	a.Restart()

	logger.Log.Info("Audio playback started", zap.Int("sampleRate", a.sampleRate))
	return &Player{player: player}, nil
}

func (p *Player) Close() error {
	if p == nil || p.player == nil {
		return nil
	}
	p.player.Pause()
	return p.player.Close()
}

package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/stupside/prism/internal/canon"
	"github.com/stupside/prism/internal/capability"
)

// Audio is the audio stack record.
type Audio struct {
	// Hash is the absolute amplitude sum of the compressed render.
	Hash    *float32      `json:"hash"`
	Formats *AudioFormats `json:"formats"`
}

// AudioFormats records which containers and codecs the host reports as
// "probably" playable.
type AudioFormats struct {
	AAC        bool `json:"aac"`
	FLAC       bool `json:"flac"`
	MPEG       bool `json:"mpeg"`
	OggFLAC    bool `json:"oggFlac"`
	OggVorbis  bool `json:"oggVorbis"`
	OggOpus    bool `json:"oggOpus"`
	WAV        bool `json:"wav"`
	WebMVorbis bool `json:"webmVorbis"`
	WebMOpus   bool `json:"webmOpus"`
	MP4        bool `json:"mp4"`
}

var (
	// AudioOptions is the offline render target: 5000 mono frames at 44 kHz.
	AudioOptions = capability.OfflineAudioOptions{Channels: 1, Length: 5000, SampleRate: 44000}

	audioOscillator = capability.OscillatorOptions{Type: "triangle", Frequency: 1000}
	audioCompressor = capability.CompressorOptions{
		Threshold: -50,
		Knee:      40,
		Ratio:     12,
		Attack:    0.2,
		Release:   0.02,
	}
)

// ReadAudio renders the compressor graph and checks codec support. The two
// readings are independent; the record is nil only when both fail.
func ReadAudio(ctx context.Context, env *Env) (*Audio, error) {
	out := &Audio{
		Hash: optional(ctx, "audio.hash", func() (float32, error) {
			return RenderHash(ctx, env.Root)
		}),
		Formats: optional(ctx, "audio.formats", func() (AudioFormats, error) {
			return ReadAudioFormats(ctx, env.Root)
		}),
	}
	if out.Hash == nil && out.Formats == nil {
		return nil, errors.New("no audio reading available")
	}
	return out, nil
}

// RenderHash renders the oscillator→compressor graph offline and sums the
// absolute samples of channel 0.
//
// It waits on both the render start and the completion notification. The
// completion slot is buffered so a notification that arrives before
// StartRendering returns is kept.
func RenderHash(ctx context.Context, root capability.Root) (float32, error) {
	ac, err := root.NewOfflineAudio(ctx, AudioOptions)
	if err != nil {
		return 0, fmt.Errorf("creating offline audio: %w", err)
	}
	defer release(ctx, "offlineaudio", ac)

	osc, err := ac.CreateOscillator(ctx, audioOscillator)
	if err != nil {
		return 0, fmt.Errorf("creating oscillator: %w", err)
	}
	comp, err := ac.CreateCompressor(ctx, audioCompressor)
	if err != nil {
		return 0, fmt.Errorf("creating compressor: %w", err)
	}
	if err := ac.Connect(ctx, osc, comp); err != nil {
		return 0, fmt.Errorf("connecting oscillator: %w", err)
	}
	if err := ac.Connect(ctx, comp, capability.Destination); err != nil {
		return 0, fmt.Errorf("connecting compressor: %w", err)
	}

	done := make(chan capability.RenderedBuffer, 1)
	var once sync.Once
	ac.OnComplete(func(buf capability.RenderedBuffer) {
		once.Do(func() { done <- buf })
	})

	if err := ac.Start(ctx, osc); err != nil {
		return 0, fmt.Errorf("starting oscillator: %w", err)
	}
	if err := ac.StartRendering(ctx); err != nil {
		return 0, fmt.Errorf("starting render: %w", err)
	}

	var buf capability.RenderedBuffer
	select {
	case buf = <-done:
	case <-ctx.Done():
		return 0, fmt.Errorf("awaiting render completion: %w", context.Cause(ctx))
	}

	samples, err := buf.ChannelData(0)
	if err != nil {
		return 0, fmt.Errorf("reading channel 0: %w", err)
	}
	return canon.AbsSum(samples), nil
}

// ReadAudioFormats asks an audio element about ten container/codec pairs.
func ReadAudioFormats(ctx context.Context, root capability.Root) (AudioFormats, error) {
	el, err := root.NewMediaElement(ctx, "audio")
	if err != nil {
		return AudioFormats{}, fmt.Errorf("creating audio element: %w", err)
	}
	defer release(ctx, "audio element", el)

	var f AudioFormats
	checks := []struct {
		mime string
		dst  *bool
	}{
		{"audio/aac", &f.AAC},
		{"audio/flac", &f.FLAC},
		{"audio/mpeg", &f.MPEG},
		{`audio/ogg; codecs="flac"`, &f.OggFLAC},
		{`audio/ogg; codecs="vorbis"`, &f.OggVorbis},
		{`audio/ogg; codecs="opus"`, &f.OggOpus},
		{`audio/wav; codecs="1"`, &f.WAV},
		{`audio/webm; codecs="vorbis"`, &f.WebMVorbis},
		{`audio/webm; codecs="opus"`, &f.WebMOpus},
		{"audio/mp4", &f.MP4},
	}
	for _, c := range checks {
		answer, err := el.CanPlayType(ctx, c.mime)
		if err != nil {
			return AudioFormats{}, fmt.Errorf("canPlayType %q: %w", c.mime, err)
		}
		*c.dst = strings.Contains(answer, "probably")
	}
	return f, nil
}

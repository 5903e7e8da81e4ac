package capability

import "context"

// OfflineAudioOptions configures an offline render target.
type OfflineAudioOptions struct {
	Channels   int     `json:"numberOfChannels"`
	Length     int     `json:"length"`
	SampleRate float64 `json:"sampleRate"`
}

// OscillatorOptions configures an oscillator node.
type OscillatorOptions struct {
	Type      string  `json:"type"`
	Frequency float64 `json:"frequency"`
}

// CompressorOptions configures a dynamics compressor node.
type CompressorOptions struct {
	Threshold float64 `json:"threshold"`
	Knee      float64 `json:"knee"`
	Ratio     float64 `json:"ratio"`
	Attack    float64 `json:"attack"`
	Release   float64 `json:"release"`
}

// AudioNode is a handle to a node inside one OfflineAudio graph.
type AudioNode int

// Destination is the graph's render target node.
const Destination AudioNode = 0

// RenderedBuffer is the buffer delivered by the completion notification.
type RenderedBuffer interface {
	ChannelData(channel int) ([]float32, error)
}

// OfflineAudio is a non-realtime audio graph.
//
// Rendering has two separate suspension points: StartRendering returns once
// the host accepted the render, and the callback registered with OnComplete
// fires once with the rendered buffer. The callback may run on any goroutine,
// before or after StartRendering returns.
type OfflineAudio interface {
	Releaser

	CreateOscillator(ctx context.Context, opts OscillatorOptions) (AudioNode, error)
	CreateCompressor(ctx context.Context, opts CompressorOptions) (AudioNode, error)
	Connect(ctx context.Context, from, to AudioNode) error
	// Start starts a source node at time zero.
	Start(ctx context.Context, node AudioNode) error

	OnComplete(fn func(RenderedBuffer))
	StartRendering(ctx context.Context) error
}

// MediaElement is an audio or video element used for codec declarations.
type MediaElement interface {
	Releaser

	CanPlayType(ctx context.Context, mime string) (string, error)
}

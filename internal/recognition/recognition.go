package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leonardotrapani/hyprnote/internal/recording"
)

// ErrUnknownProvider is returned for a provider name with no source implementation.
var ErrUnknownProvider = errors.New("unknown recognition provider")

// Alternative is one candidate transcript for a result.
type Alternative struct {
	Transcript string
	Confidence float64
}

// Result is one recognized segment. Interim results may later be replaced by
// their finalized version.
type Result struct {
	Alternatives []Alternative
	IsFinal      bool
}

// ResultSet is every result of a session so far, in arrival order.
type ResultSet []Result

// Transcript concatenates the first alternative of every result.
func (rs ResultSet) Transcript() string {
	var b strings.Builder
	for _, r := range rs {
		if len(r.Alternatives) > 0 {
			b.WriteString(r.Alternatives[0].Transcript)
		}
	}
	return b.String()
}

func (rs ResultSet) clone() ResultSet {
	out := make(ResultSet, len(rs))
	for i, r := range rs {
		out[i] = Result{
			Alternatives: append([]Alternative(nil), r.Alternatives...),
			IsFinal:      r.IsFinal,
		}
	}
	return out
}

// Options configure a single recognition session.
type Options struct {
	Language        string // BCP 47 tag
	Continuous      bool   // keep listening after the first final result
	MaxAlternatives int
	InterimResults  bool
}

func (o Options) validate() error {
	if o.Language == "" {
		return fmt.Errorf("recognition: language required")
	}
	if o.MaxAlternatives < 1 {
		return fmt.Errorf("recognition: max alternatives must be at least 1, got %d", o.MaxAlternatives)
	}
	return nil
}

// Source is a running speech recognizer. Results is closed when the source
// terminates, either through Stop or on its own; Err then reports why
// (nil for a clean stop).
type Source interface {
	Start(ctx context.Context) error
	Results() <-chan ResultSet
	Err() error
	Stop() error
}

// Platform is the host's speech recognition capability.
type Platform interface {
	Available() bool
	NewSource(opts Options) (Source, error)
}

// Config selects and configures the recognition provider.
type Config struct {
	Provider      string // "deepgram" or "openai"
	APIKey        string
	Model         string
	Endpoint      string        // overrides the provider's base URL
	ChunkInterval time.Duration // openai only
	Recording     recording.Config
}

type platform struct {
	config        Config
	hasMicrophone func() bool
	newCapturer   func() recording.Capturer
}

// NewPlatform returns the platform backed by pw-record and the configured provider.
func NewPlatform(config Config) Platform {
	return &platform{
		config:        config,
		hasMicrophone: recording.Available,
		newCapturer: func() recording.Capturer {
			return recording.NewRecorder(config.Recording)
		},
	}
}

// Available reports whether a source could be created: the provider is known,
// an API key is set and pw-record is installed.
func (p *platform) Available() bool {
	switch p.config.Provider {
	case "deepgram", "openai":
	default:
		return false
	}
	return p.config.APIKey != "" && p.hasMicrophone()
}

func (p *platform) NewSource(opts Options) (Source, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	switch p.config.Provider {
	case "deepgram":
		return NewDeepgramSource(p.config, opts, p.newCapturer()), nil
	case "openai":
		return NewWhisperSource(p.config, opts, p.newCapturer()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p.config.Provider)
	}
}

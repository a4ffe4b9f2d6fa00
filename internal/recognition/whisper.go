package recognition

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/hyprnote/internal/language"
	"github.com/leonardotrapani/hyprnote/internal/recording"
	"github.com/sashabaranov/go-openai"
)

// WhisperSource records audio in fixed intervals and sends each chunk to the
// OpenAI transcription API. Every transcribed chunk becomes a final result;
// the API has no interim results.
type WhisperSource struct {
	client     *openai.Client
	model      string
	language   string
	interval   time.Duration
	sampleRate int
	channels   int
	opts       Options
	capturer   recording.Capturer

	resultsCh chan ResultSet
	segments  segmentList

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
	err     error
	wg      sync.WaitGroup
}

func NewWhisperSource(config Config, opts Options, capturer recording.Capturer) *WhisperSource {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.Endpoint != "" {
		clientConfig.BaseURL = config.Endpoint
	}
	model := config.Model
	if model == "" {
		model = openai.Whisper1
	}
	interval := config.ChunkInterval
	if interval <= 0 {
		interval = 4 * time.Second
	}
	sampleRate := config.Recording.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	channels := config.Recording.Channels
	if channels <= 0 {
		channels = 1
	}

	return &WhisperSource{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		language:   language.Base(opts.Language),
		interval:   interval,
		sampleRate: sampleRate,
		channels:   channels,
		opts:       opts,
		capturer:   capturer,
		resultsCh:  make(chan ResultSet, 16),
	}
}

func (s *WhisperSource) Results() <-chan ResultSet { return s.resultsCh }

func (s *WhisperSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *WhisperSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("whisper: source already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	frameCh, errCh, err := s.capturer.Start(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("whisper: start capture: %w", err)
	}

	s.cancel = cancel
	s.started = true

	s.wg.Add(1)
	go s.run(runCtx, frameCh, errCh)

	log.Printf("whisper: listening, model=%s, language=%s, chunk=%v", s.model, s.language, s.interval)
	return nil
}

// Stop ends the session, discarding audio not yet transcribed.
func (s *WhisperSource) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	s.capturer.Stop()
	s.wg.Wait()
	return nil
}

func (s *WhisperSource) run(ctx context.Context, frameCh <-chan recording.AudioFrame, errCh <-chan error) {
	defer func() {
		// releases the microphone when the session ends on its own
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		cancel()

		close(s.resultsCh)
		s.wg.Done()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var pending []byte

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errCh:
			if ok && err != nil {
				s.fail(fmt.Errorf("whisper: capture: %w", err))
				return
			}
			errCh = nil

		case frame, ok := <-frameCh:
			if !ok {
				if ctx.Err() == nil {
					s.fail(fmt.Errorf("whisper: microphone stream ended"))
				}
				return
			}
			pending = append(pending, frame.Data...)

		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			chunk := pending
			pending = nil

			done, err := s.transcribeChunk(ctx, chunk)
			if err != nil {
				if ctx.Err() == nil {
					s.fail(err)
				}
				return
			}
			if done {
				return
			}
		}
	}
}

// transcribeChunk transcribes one chunk and emits the updated result set.
// It returns true when the session is over.
func (s *WhisperSource) transcribeChunk(ctx context.Context, chunk []byte) (bool, error) {
	req := openai.AudioRequest{
		Model:    s.model,
		Reader:   bytes.NewReader(encodeWAV(chunk, s.sampleRate, s.channels)),
		FilePath: "audio.wav",
		Language: s.language,
	}

	start := time.Now()
	resp, err := s.client.CreateTranscription(ctx, req)
	if err != nil {
		return false, fmt.Errorf("whisper: transcription failed after %v: %w", time.Since(start), err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		log.Printf("whisper: empty chunk result after %v", time.Since(start))
		return false, nil
	}
	log.Printf("whisper: chunk transcribed in %v", time.Since(start))

	s.segments.apply(Result{Alternatives: []Alternative{{Transcript: text, Confidence: 1}}, IsFinal: true})

	select {
	case s.resultsCh <- s.segments.snapshot():
	case <-ctx.Done():
		return true, nil
	}

	return !s.opts.Continuous, nil
}

func (s *WhisperSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	log.Printf("whisper: session ended: %v", err)
}

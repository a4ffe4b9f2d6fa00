package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leonardotrapani/hyprnote/internal/recording"
)

const deepgramDefaultEndpoint = "wss://api.deepgram.com/v1/listen"

// DeepgramSource streams microphone audio to Deepgram live transcription.
type DeepgramSource struct {
	endpoint   string
	apiKey     string
	model      string
	sampleRate int
	channels   int
	opts       Options
	capturer   recording.Capturer
	dialer     *websocket.Dialer

	resultsCh chan ResultSet
	segments  segmentList

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	started bool
	err     error

	finishOnce sync.Once
	wg         sync.WaitGroup
}

// Deepgram WebSocket response (incoming)
type deepgramResponse struct {
	Type        string           `json:"type"`
	Channel     *deepgramChannel `json:"channel,omitempty"`
	IsFinal     bool             `json:"is_final,omitempty"`
	SpeechFinal bool             `json:"speech_final,omitempty"`
	Metadata    *struct {
		RequestID string `json:"request_id"`
	} `json:"metadata,omitempty"`
	Description string `json:"description,omitempty"`
	Message     string `json:"message,omitempty"`
}

type deepgramChannel struct {
	Alternatives []deepgramAlternative `json:"alternatives"`
}

type deepgramAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

func NewDeepgramSource(config Config, opts Options, capturer recording.Capturer) *DeepgramSource {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = deepgramDefaultEndpoint
	}
	model := config.Model
	if model == "" {
		model = "nova-2"
	}
	sampleRate := config.Recording.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	channels := config.Recording.Channels
	if channels <= 0 {
		channels = 1
	}

	return &DeepgramSource{
		endpoint:   endpoint,
		apiKey:     config.APIKey,
		model:      model,
		sampleRate: sampleRate,
		channels:   channels,
		opts:       opts,
		capturer:   capturer,
		dialer:     websocket.DefaultDialer,
		resultsCh:  make(chan ResultSet, 16),
	}
}

func (s *DeepgramSource) Results() <-chan ResultSet { return s.resultsCh }

func (s *DeepgramSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Start connects to Deepgram and begins streaming microphone audio.
func (s *DeepgramSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("deepgram: source already started")
	}

	wsURL, err := s.buildURL()
	if err != nil {
		return fmt.Errorf("deepgram: build websocket url: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	headers := http.Header{}
	headers.Set("Authorization", "Token "+s.apiKey)

	conn, resp, err := s.dialer.DialContext(runCtx, wsURL, headers)
	if err != nil {
		cancel()
		if resp != nil {
			log.Printf("deepgram: dial failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("deepgram: websocket dial: %w", err)
	}

	frameCh, errCh, err := s.capturer.Start(runCtx)
	if err != nil {
		cancel()
		conn.Close()
		return fmt.Errorf("deepgram: start capture: %w", err)
	}

	s.conn = conn
	s.cancel = cancel
	s.started = true

	s.wg.Add(2)
	go s.sendLoop(runCtx, frameCh, errCh)
	go s.readLoop(runCtx)

	go func() {
		s.wg.Wait()
		close(s.resultsCh)
	}()

	log.Printf("deepgram: connected, model=%s, language=%s", s.model, s.opts.Language)
	return nil
}

// Stop ends the session. Safe to call more than once or before Start.
func (s *DeepgramSource) Stop() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.finish(nil)
	s.capturer.Stop()
	s.wg.Wait()
	return nil
}

// finish records the terminal error once and tears the connection down.
func (s *DeepgramSource) finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		cancel := s.cancel
		conn := s.conn
		s.mu.Unlock()

		if err != nil {
			log.Printf("deepgram: session ended: %v", err)
		}
		if cancel != nil {
			cancel()
		}
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		}
	})
}

func (s *DeepgramSource) buildURL() (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("model", s.model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(s.sampleRate))
	q.Set("channels", strconv.Itoa(s.channels))
	q.Set("interim_results", strconv.FormatBool(s.opts.InterimResults))
	q.Set("alternatives", strconv.Itoa(s.opts.MaxAlternatives))
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	if s.opts.Language != "" {
		q.Set("language", s.opts.Language)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *DeepgramSource) sendLoop(ctx context.Context, frameCh <-chan recording.AudioFrame, errCh <-chan error) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errCh:
			if ok && err != nil {
				s.finish(fmt.Errorf("deepgram: capture: %w", err))
				return
			}
			errCh = nil

		case frame, ok := <-frameCh:
			if !ok {
				if ctx.Err() == nil {
					s.finish(fmt.Errorf("deepgram: microphone stream ended"))
				}
				return
			}
			if err := s.conn.WriteMessage(websocket.BinaryMessage, frame.Data); err != nil {
				if ctx.Err() == nil {
					s.finish(fmt.Errorf("deepgram: websocket write: %w", err))
				}
				return
			}
		}
	}
}

func (s *DeepgramSource) readLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.finish(fmt.Errorf("deepgram: websocket read: %w", err))
			}
			return
		}

		var resp deepgramResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			log.Printf("deepgram: parse error: %v", err)
			continue
		}

		switch resp.Type {
		case "Results":
			if s.handleResults(ctx, resp) {
				return
			}

		case "Metadata":
			if resp.Metadata != nil {
				log.Printf("deepgram: session started, request_id=%s", resp.Metadata.RequestID)
			}

		case "Error":
			msg := resp.Message
			if resp.Description != "" {
				msg = strings.TrimSpace(msg + ": " + resp.Description)
			}
			s.finish(fmt.Errorf("deepgram: %s", msg))
			return

		default:
			// UtteranceEnd, SpeechStarted
		}
	}
}

// handleResults folds one Deepgram message into the segment list and emits
// the new result set. It returns true when the session is over.
func (s *DeepgramSource) handleResults(ctx context.Context, resp deepgramResponse) bool {
	if resp.Channel == nil {
		return false
	}
	final := resp.IsFinal || resp.SpeechFinal
	if !final && !s.opts.InterimResults {
		return false
	}

	var alts []Alternative
	for _, a := range resp.Channel.Alternatives {
		if len(alts) == s.opts.MaxAlternatives {
			break
		}
		alts = append(alts, Alternative{Transcript: a.Transcript, Confidence: a.Confidence})
	}

	if len(alts) == 0 || alts[0].Transcript == "" {
		// silence; a finalized empty segment discards the pending interim one
		if !(final && s.segments.dropInterim()) {
			return false
		}
	} else {
		s.segments.apply(Result{Alternatives: alts, IsFinal: final})
	}

	select {
	case s.resultsCh <- s.segments.snapshot():
	case <-ctx.Done():
		return true
	}

	if final && !s.opts.Continuous {
		s.finish(nil)
		return true
	}
	return false
}

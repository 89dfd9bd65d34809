package voice

import (
	"errors"
	"strings"
	"time"
)

// Transcriber converts incremental audio into text. Raw speech decoding is an
// external collaborator; implementations typically proxy a speech API.
type Transcriber interface {
	// Feed accepts one audio chunk and returns any new partial transcript.
	Feed(chunk []byte) (string, error)
	// Finalize flushes the decoder and returns the full transcript.
	Finalize() (string, error)
	Close() error
}

// Event types of the streaming answer protocol.
const (
	EventPartial = "partial"
	EventFinal   = "final"
	EventDone    = "done"
	EventError   = "error"
)

// Event is one outbound message of the streaming protocol. Done events carry
// the final transcript and the computed metrics, which feed the answer
// pipeline exactly like a typed answer.
type Event struct {
	Type    string   `json:"type"`
	Text    string   `json:"text,omitempty"`
	Metrics *Metrics `json:"metrics,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ErrNoSpeech is returned when a stream stops without producing a transcript.
// The answer pipeline is never entered with empty voice data.
var ErrNoSpeech = errors.New("no speech detected")

// Stream tracks one spoken answer from the moment its question was served.
// It is used by a single connection goroutine and needs no locking.
type Stream struct {
	transcriber Transcriber
	questionEnd time.Time
	answerStart time.Time
	lastPartial string
	now         func() time.Time
}

// NewStream starts tracking a spoken answer. questionEnd is when the question
// was served; response latency is measured from it to the first audio chunk.
func NewStream(transcriber Transcriber, questionEnd time.Time) *Stream {
	return &Stream{
		transcriber: transcriber,
		questionEnd: questionEnd,
		now:         time.Now,
	}
}

// PushAudio forwards one chunk to the transcriber and returns the new partial
// transcript, or "" when the chunk produced no new text.
func (s *Stream) PushAudio(chunk []byte) (string, error) {
	if s.answerStart.IsZero() {
		s.answerStart = s.now()
	}

	partial, err := s.transcriber.Feed(chunk)
	if err != nil {
		return "", err
	}

	partial = strings.TrimSpace(partial)
	if partial == "" || partial == s.lastPartial {
		return "", nil
	}
	s.lastPartial = partial
	return partial, nil
}

// Stop finalizes the transcript and computes the answer's voice metrics.
func (s *Stream) Stop() (string, *Metrics, error) {
	transcript, err := s.transcriber.Finalize()
	if err != nil {
		return "", nil, err
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", nil, ErrNoSpeech
	}

	metrics := ComputeMetrics(transcript, s.questionEnd, s.answerStart, s.now())
	return transcript, metrics, nil
}

// Close releases the underlying transcriber.
func (s *Stream) Close() error {
	return s.transcriber.Close()
}

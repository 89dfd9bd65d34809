package voice

import (
	"errors"
	"testing"
	"time"
)

type fakeTranscriber struct {
	partials  []string
	feedIndex int
	final     string
	feedErr   error
	finalErr  error
	closed    bool
}

func (f *fakeTranscriber) Feed(_ []byte) (string, error) {
	if f.feedErr != nil {
		return "", f.feedErr
	}
	if f.feedIndex >= len(f.partials) {
		return "", nil
	}
	partial := f.partials[f.feedIndex]
	f.feedIndex++
	return partial, nil
}

func (f *fakeTranscriber) Finalize() (string, error) {
	if f.finalErr != nil {
		return "", f.finalErr
	}
	return f.final, nil
}

func (f *fakeTranscriber) Close() error {
	f.closed = true
	return nil
}

// fixedClock hands out timestamps one second apart.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

func TestStreamDeduplicatesPartials(t *testing.T) {
	transcriber := &fakeTranscriber{partials: []string{"I led", "I led", "I led the team"}}
	stream := NewStream(transcriber, time.Now())

	first, err := stream.PushAudio([]byte{1})
	if err != nil || first != "I led" {
		t.Fatalf("first partial = %q, %v", first, err)
	}

	repeat, err := stream.PushAudio([]byte{2})
	if err != nil || repeat != "" {
		t.Fatalf("repeated partial = %q, %v, want empty", repeat, err)
	}

	grown, err := stream.PushAudio([]byte{3})
	if err != nil || grown != "I led the team" {
		t.Fatalf("grown partial = %q, %v", grown, err)
	}
}

func TestStreamStopComputesMetrics(t *testing.T) {
	questionEnd := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	transcriber := &fakeTranscriber{
		partials: []string{"um I led the team"},
		final:    "um I led the team",
	}

	stream := NewStream(transcriber, questionEnd)
	// First chunk at +3s, finalize at +4s.
	stream.now = fixedClock(questionEnd.Add(3 * time.Second))

	if _, err := stream.PushAudio([]byte{1}); err != nil {
		t.Fatalf("PushAudio: %v", err)
	}

	transcript, metrics, err := stream.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if transcript != "um I led the team" {
		t.Fatalf("transcript = %q", transcript)
	}
	if metrics.ResponseLatencyS != 3 {
		t.Fatalf("latency = %v, want 3", metrics.ResponseLatencyS)
	}
	if metrics.AnswerDurationS != 1 {
		t.Fatalf("duration = %v, want 1", metrics.AnswerDurationS)
	}
	if metrics.FillerCount != 1 || metrics.WordCount != 5 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestStreamStopWithoutSpeech(t *testing.T) {
	transcriber := &fakeTranscriber{final: "   "}
	stream := NewStream(transcriber, time.Now())

	if _, _, err := stream.Stop(); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
}

func TestStreamPropagatesTranscriberErrors(t *testing.T) {
	feedErr := errors.New("decoder crashed")
	stream := NewStream(&fakeTranscriber{feedErr: feedErr}, time.Now())

	if _, err := stream.PushAudio([]byte{1}); !errors.Is(err, feedErr) {
		t.Fatalf("err = %v, want %v", err, feedErr)
	}

	finalErr := errors.New("flush failed")
	stream = NewStream(&fakeTranscriber{finalErr: finalErr}, time.Now())
	if _, _, err := stream.Stop(); !errors.Is(err, finalErr) {
		t.Fatalf("err = %v, want %v", err, finalErr)
	}
}

func TestStreamCloseReleasesTranscriber(t *testing.T) {
	transcriber := &fakeTranscriber{}
	stream := NewStream(transcriber, time.Now())

	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !transcriber.closed {
		t.Fatalf("transcriber not closed")
	}
}

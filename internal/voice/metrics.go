package voice

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// Metrics describes delivery characteristics of one spoken answer. It is
// attached to the turn exactly as a typed answer would carry none.
type Metrics struct {
	ResponseLatencyS float64  `json:"response_latency_s" mapstructure:"response_latency_s"`
	AnswerDurationS  float64  `json:"answer_duration_s" mapstructure:"answer_duration_s"`
	FillerCount      int      `json:"filler_count" mapstructure:"filler_count"`
	FillerWords      []string `json:"filler_words" mapstructure:"filler_words"`
	WordCount        int      `json:"word_count" mapstructure:"word_count"`
	FillerRatePerMin float64  `json:"filler_rate_per_min" mapstructure:"filler_rate_per_min"`
}

// fillerUnigrams are single filler words. Bigrams are matched first so that
// "kind of" does not double-count "kind".
var fillerUnigrams = map[string]bool{
	"um":        true,
	"uh":        true,
	"er":        true,
	"ah":        true,
	"hmm":       true,
	"like":      true,
	"actually":  true,
	"basically": true,
	"literally": true,
}

var fillerBigrams = map[string]bool{
	"you know": true,
	"i mean":   true,
	"kind of":  true,
	"sort of":  true,
}

// ComputeMetrics derives voice metrics from a finalized transcript and the
// observed timing of the answer. questionEnd is when the question was served,
// answerStart when speech began, answerEnd when the transcript finalized.
func ComputeMetrics(transcript string, questionEnd, answerStart, answerEnd time.Time) *Metrics {
	words := tokenize(transcript)

	metrics := &Metrics{
		WordCount: len(words),
	}

	if !questionEnd.IsZero() && answerStart.After(questionEnd) {
		metrics.ResponseLatencyS = round2(answerStart.Sub(questionEnd).Seconds())
	}

	var duration float64
	if answerEnd.After(answerStart) {
		duration = answerEnd.Sub(answerStart).Seconds()
		metrics.AnswerDurationS = round2(duration)
	}

	fillers := countFillers(words)
	metrics.FillerCount = len(fillers)
	metrics.FillerWords = fillers

	if duration > 0 {
		metrics.FillerRatePerMin = round2(float64(len(fillers)) / duration * 60)
	}

	return metrics
}

func tokenize(transcript string) []string {
	lowered := strings.ToLower(transcript)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// countFillers returns every filler occurrence in order. Bigrams consume both
// tokens.
func countFillers(words []string) []string {
	var found []string
	for i := 0; i < len(words); i++ {
		if i+1 < len(words) {
			bigram := words[i] + " " + words[i+1]
			if fillerBigrams[bigram] {
				found = append(found, bigram)
				i++
				continue
			}
		}
		if fillerUnigrams[words[i]] {
			found = append(found, words[i])
		}
	}
	return found
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

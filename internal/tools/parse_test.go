package tools

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain object",
			raw:  `{"quality": "strong"}`,
			want: `{"quality": "strong"}`,
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"quality\": \"weak\"}\n```",
			want: `{"quality": "weak"}`,
		},
		{
			name: "fenced without language",
			raw:  "```\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
		},
		{
			name: "prose around object",
			raw:  "Here is the result:\n{\"score\": 10}\nHope that helps!",
			want: `{"score": 10}`,
		},
		{
			name: "prose around array",
			raw:  "The plan: [{\"topic\": \"spark\"}] as requested",
			want: `[{"topic": "spark"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.raw); got != tt.want {
				t.Fatalf("ExtractJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeLooseCoercesStringScores(t *testing.T) {
	var analysis AnswerAnalysis
	raw := "```json\n" + `{"confidence_score": "80", "specificity_score": 70, "star_score": "65", "non_answer": "false"}` + "\n```"

	if err := DecodeLoose(raw, &analysis); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if analysis.ConfidenceScore != 80 || analysis.SpecificityScore != 70 || analysis.STARScore != 65 {
		t.Fatalf("unexpected scores: %+v", analysis)
	}
	if analysis.NonAnswer {
		t.Fatalf("expected non_answer to be false")
	}
}

func TestDecodeLooseRejectsGarbage(t *testing.T) {
	var analysis AnswerAnalysis
	if err := DecodeLoose("the model refused to answer", &analysis); err == nil {
		t.Fatalf("expected an error for non-JSON input")
	}
}

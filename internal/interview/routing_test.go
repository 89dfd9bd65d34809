package interview

import (
	"testing"

	"github.com/mockview/mockview/internal/tools"
)

func TestDecideRouting(t *testing.T) {
	tests := []struct {
		name        string
		rc          routingContext
		wantAction  string
		wantPersona string
	}{
		{
			name: "evasive limit ends the interview even with budget left",
			rc: routingContext{
				persona:         tools.PersonaHM,
				quality:         tools.QualityEvasive,
				budgetLeft:      true,
				remainingAfter:  4,
				nextPersona:     tools.PersonaHM,
				evasiveLimitHit: true,
			},
			wantAction: tools.ActionEndInterview,
		},
		{
			name: "evasive answer with budget earns a follow-up",
			rc: routingContext{
				persona:        tools.PersonaTech,
				quality:        tools.QualityEvasive,
				budgetLeft:     true,
				remainingAfter: 3,
				nextPersona:    tools.PersonaTech,
			},
			wantAction:  tools.ActionFollowUp,
			wantPersona: tools.PersonaTech,
		},
		{
			name: "weak answer with budget earns a follow-up",
			rc: routingContext{
				persona:        tools.PersonaHM,
				quality:        tools.QualityWeak,
				budgetLeft:     true,
				remainingAfter: 5,
				nextPersona:    tools.PersonaHM,
			},
			wantAction:  tools.ActionFollowUp,
			wantPersona: tools.PersonaHM,
		},
		{
			name: "critical flag probes even an adequate answer",
			rc: routingContext{
				persona:        tools.PersonaHR,
				quality:        tools.QualityAdequate,
				critical:       true,
				budgetLeft:     true,
				remainingAfter: 2,
				nextPersona:    tools.PersonaHR,
			},
			wantAction:  tools.ActionFollowUp,
			wantPersona: tools.PersonaHR,
		},
		{
			name: "weak answer without budget advances",
			rc: routingContext{
				persona:        tools.PersonaHM,
				quality:        tools.QualityWeak,
				remainingAfter: 3,
				nextPersona:    tools.PersonaHM,
			},
			wantAction:  tools.ActionNextQuestion,
			wantPersona: tools.PersonaHM,
		},
		{
			name: "plan exhausted ends the interview",
			rc: routingContext{
				persona: tools.PersonaHR,
				quality: tools.QualityStrong,
			},
			wantAction: tools.ActionEndInterview,
		},
		{
			name: "block boundary switches persona",
			rc: routingContext{
				persona:        tools.PersonaHM,
				quality:        tools.QualityStrong,
				remainingAfter: 4,
				nextPersona:    tools.PersonaTech,
			},
			wantAction:  tools.ActionSwitchPersona,
			wantPersona: tools.PersonaTech,
		},
		{
			name: "mid-block strong answer advances",
			rc: routingContext{
				persona:        tools.PersonaTech,
				quality:        tools.QualityStrong,
				remainingAfter: 2,
				nextPersona:    tools.PersonaTech,
			},
			wantAction:  tools.ActionNextQuestion,
			wantPersona: tools.PersonaTech,
		},
		{
			name: "evasive without budget still advances below the limit",
			rc: routingContext{
				persona:        tools.PersonaTech,
				quality:        tools.QualityEvasive,
				remainingAfter: 1,
				nextPersona:    tools.PersonaHR,
			},
			wantAction:  tools.ActionSwitchPersona,
			wantPersona: tools.PersonaHR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routing := decideRouting(tt.rc)
			if routing.Action != tt.wantAction {
				t.Fatalf("action = %q, want %q", routing.Action, tt.wantAction)
			}
			if routing.NextPersona != tt.wantPersona {
				t.Fatalf("next persona = %q, want %q", routing.NextPersona, tt.wantPersona)
			}
		})
	}
}

func TestClampRoutingPolicyActionWins(t *testing.T) {
	policy := &tools.RoutingResult{
		NextPersona: tools.PersonaHM,
		Action:      tools.ActionFollowUp,
		Reason:      "weak answer needs a targeted probe",
	}
	advisory := &tools.RoutingResult{
		NextPersona:    tools.PersonaTech,
		Action:         tools.ActionSwitchPersona,
		Reason:         "move on, the candidate is stuck",
		SuggestedTopic: "deployment rollback",
	}

	routing := clampRouting(policy, advisory)
	if routing.Action != tools.ActionFollowUp || routing.NextPersona != tools.PersonaHM {
		t.Fatalf("advisory overrode policy: %+v", routing)
	}
	// The narrower probe topic survives the disagreement.
	if routing.SuggestedTopic != "deployment rollback" {
		t.Fatalf("suggested topic = %q", routing.SuggestedTopic)
	}
	if routing.Reason != "weak answer needs a targeted probe" {
		t.Fatalf("reason replaced despite disagreement: %q", routing.Reason)
	}
}

func TestClampRoutingAgreementMergesReason(t *testing.T) {
	policy := &tools.RoutingResult{
		NextPersona: tools.PersonaTech,
		Action:      tools.ActionNextQuestion,
		Reason:      "advancing to the next planned question",
	}
	advisory := &tools.RoutingResult{
		NextPersona:    tools.PersonaTech,
		Action:         tools.ActionNextQuestion,
		Reason:         "the answer fully covered the topic",
		SuggestedTopic: "capacity planning",
	}

	routing := clampRouting(policy, advisory)
	if routing.Reason != "the answer fully covered the topic" {
		t.Fatalf("reason = %q", routing.Reason)
	}
	if routing.SuggestedTopic != "capacity planning" {
		t.Fatalf("suggested topic = %q", routing.SuggestedTopic)
	}
}

func TestClampRoutingNilAdvisory(t *testing.T) {
	policy := &tools.RoutingResult{Action: tools.ActionEndInterview}
	if routing := clampRouting(policy, nil); routing != policy {
		t.Fatalf("expected the policy back unchanged")
	}
}

package interview

import (
	"fmt"

	"github.com/mockview/mockview/internal/tools"
)

// routingContext is the snapshot the routing policy decides from. It is
// captured while the session is locked so the decision applies to exactly the
// state it was computed against.
type routingContext struct {
	persona  string
	quality  string
	critical bool
	// budgetLeft is false once the plan item behind this turn has spawned its
	// follow-up, bounding the loop to one probe per item.
	budgetLeft bool
	// remainingAfter counts plan items left once this turn's item is consumed.
	remainingAfter int
	// nextPersona is the persona of the next plan item, empty when none remain.
	nextPersona string
	// evasiveLimitHit is true when this answer pushes the consecutive-evasive
	// streak to the configured limit.
	evasiveLimitHit bool
}

// decideRouting is the deterministic routing policy. The model's advisory
// suggestion never overrides it; see clampRouting.
//
// Order of precedence: the evasive-streak limit ends the interview; an
// evasive, critically-flagged, or weak answer earns one follow-up while the
// item's budget lasts; otherwise the plan advances, switching personas at
// block boundaries and ending when nothing remains.
func decideRouting(rc routingContext) *tools.RoutingResult {
	if rc.evasiveLimitHit {
		return &tools.RoutingResult{
			Action: tools.ActionEndInterview,
			Reason: "repeated evasive answers reached the configured limit",
		}
	}

	needsProbe := rc.quality == tools.QualityEvasive || rc.quality == tools.QualityWeak || rc.critical
	if needsProbe && rc.budgetLeft {
		return &tools.RoutingResult{
			NextPersona: rc.persona,
			Action:      tools.ActionFollowUp,
			Reason:      fmt.Sprintf("%s answer needs a targeted probe", rc.quality),
		}
	}

	if rc.remainingAfter == 0 {
		return &tools.RoutingResult{
			Action: tools.ActionEndInterview,
			Reason: "question plan exhausted",
		}
	}

	if rc.nextPersona != rc.persona {
		return &tools.RoutingResult{
			NextPersona: rc.nextPersona,
			Action:      tools.ActionSwitchPersona,
			Reason:      fmt.Sprintf("%s block complete, handing over to %s", rc.persona, rc.nextPersona),
		}
	}

	return &tools.RoutingResult{
		NextPersona: rc.persona,
		Action:      tools.ActionNextQuestion,
		Reason:      "advancing to the next planned question",
	}
}

// clampRouting reconciles the model's advisory suggestion with the policy
// decision. The policy's action and persona always win; the advisory
// contributes its reason and narrower suggested topic when its action agrees.
func clampRouting(policy, advisory *tools.RoutingResult) *tools.RoutingResult {
	if advisory == nil {
		return policy
	}

	if advisory.Action == policy.Action {
		if advisory.Reason != "" {
			policy.Reason = advisory.Reason
		}
		policy.SuggestedTopic = advisory.SuggestedTopic
	} else if policy.Action == tools.ActionFollowUp {
		// A narrower probe topic is useful even when the advisory wanted to
		// move on.
		policy.SuggestedTopic = advisory.SuggestedTopic
	}

	return policy
}

package interview

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/research"
	"github.com/mockview/mockview/internal/tools"
)

// PlanItem is one planned question. The plan is built once per session and
// consumed sequentially; follow-ups are ephemeral and never join the plan.
type PlanItem struct {
	Question string `json:"question"`
	Persona  string `json:"persona"`
	Topic    string `json:"topic"`
	Priority string `json:"priority"`
	Depth    string `json:"depth"`

	followUpsUsed int
}

// personaWeights drive the question allocation across personas.
var personaWeights = map[string]float64{
	tools.PersonaHM:   0.35,
	tools.PersonaTech: 0.40,
	tools.PersonaHR:   0.25,
}

// allocateQuestions splits count across the personas with largest-remainder
// rounding. Remainder ties break in the fixed persona order HM, Tech, HR, so
// the allocation is deterministic for a given count.
func allocateQuestions(count int) map[string]int {
	quotas := make(map[string]int, len(tools.PersonaOrder))
	remainders := make(map[string]float64, len(tools.PersonaOrder))

	assigned := 0
	for _, persona := range tools.PersonaOrder {
		exact := personaWeights[persona] * float64(count)
		quotas[persona] = int(exact)
		remainders[persona] = exact - float64(quotas[persona])
		assigned += quotas[persona]
	}

	order := append([]string(nil), tools.PersonaOrder...)
	sort.SliceStable(order, func(i, j int) bool {
		return remainders[order[i]] > remainders[order[j]]
	})

	for i := 0; assigned < count; i++ {
		quotas[order[i%len(order)]]++
		assigned++
	}

	return quotas
}

var priorityRank = map[string]int{
	tools.PriorityHigh:   0,
	tools.PriorityMedium: 1,
	tools.PriorityLow:    2,
}

// buildPlan produces the ordered question plan: a model draft validated,
// deduplicated, and redistributed to the persona quotas, topped up from the
// brief and resume gaps when the draft falls short. It never fails; with no
// usable draft the whole plan comes from the research material. Items are
// laid out in contiguous persona blocks in rotation order.
func buildPlan(ctx context.Context, toolbox *tools.Toolbox, brief *research.Brief, resume *research.ResumeProfile, count int, log *zap.Logger) []*PlanItem {
	quotas := allocateQuestions(count)

	drafts, err := toolbox.DraftPlan(ctx, brief.Company, brief.Role, planContext(brief, resume), count)
	if err != nil {
		log.Warn("plan draft unavailable, building plan from research material", zap.Error(err))
	}

	seenTopics := make(map[string]bool)
	buckets := make(map[string][]*PlanItem, len(tools.PersonaOrder))
	for _, draft := range drafts {
		item := validateDraft(draft, seenTopics)
		if item == nil {
			continue
		}
		buckets[item.Persona] = append(buckets[item.Persona], item)
	}

	var plan []*PlanItem
	for _, persona := range tools.PersonaOrder {
		bucket := buckets[persona]
		sort.SliceStable(bucket, func(i, j int) bool {
			return priorityRank[bucket[i].Priority] < priorityRank[bucket[j].Priority]
		})

		quota := quotas[persona]
		if len(bucket) > quota {
			bucket = bucket[:quota]
		}
		plan = append(plan, bucket...)

		if missing := quota - len(bucket); missing > 0 {
			plan = append(plan, fillPlan(persona, missing, brief, resume, seenTopics)...)
		}
	}

	return plan
}

// validateDraft turns a model draft into a plan item, rejecting unknown
// personas, empty questions, and duplicate topics.
func validateDraft(draft tools.PlanDraft, seenTopics map[string]bool) *PlanItem {
	persona := strings.TrimSpace(draft.Persona)
	question := strings.TrimSpace(draft.Question)
	topic := strings.TrimSpace(draft.Topic)

	if !tools.ValidPersona(persona) || question == "" || topic == "" {
		return nil
	}

	key := strings.ToLower(topic)
	if seenTopics[key] {
		return nil
	}
	seenTopics[key] = true

	priority := strings.ToLower(strings.TrimSpace(draft.Priority))
	if _, ok := priorityRank[priority]; !ok {
		priority = tools.PriorityMedium
	}

	depth := strings.ToLower(strings.TrimSpace(draft.Depth))
	switch depth {
	case tools.DepthSurface, tools.DepthModerate, tools.DepthDeep:
	default:
		depth = tools.DepthModerate
	}

	return &PlanItem{
		Question: question,
		Persona:  persona,
		Topic:    topic,
		Priority: priority,
		Depth:    depth,
	}
}

// fillPlan tops up a persona's quota from the research material when the
// model draft did not supply enough usable items. Resume gaps rank first for
// the technical block and carry high priority.
func fillPlan(persona string, missing int, brief *research.Brief, resume *research.ResumeProfile, seenTopics map[string]bool) []*PlanItem {
	type candidate struct {
		topic    string
		priority string
	}

	var candidates []candidate
	add := func(topics []string, priority string) {
		for _, topic := range topics {
			topic = strings.TrimSpace(topic)
			if topic != "" {
				candidates = append(candidates, candidate{topic: topic, priority: priority})
			}
		}
	}

	switch persona {
	case tools.PersonaHM:
		add(brief.Competencies, tools.PriorityMedium)
		add(brief.GapHints, tools.PriorityHigh)
		add(defaultTopics[tools.PersonaHM], tools.PriorityLow)
	case tools.PersonaTech:
		add(resume.GapTopics(), tools.PriorityHigh)
		add(brief.TechnicalSkills, tools.PriorityMedium)
		add(brief.Keywords, tools.PriorityLow)
		add(defaultTopics[tools.PersonaTech], tools.PriorityLow)
	case tools.PersonaHR:
		add(brief.SoftSkills, tools.PriorityMedium)
		add(defaultTopics[tools.PersonaHR], tools.PriorityLow)
	}

	var items []*PlanItem
	for _, c := range candidates {
		if len(items) == missing {
			break
		}
		key := strings.ToLower(c.topic)
		if seenTopics[key] {
			continue
		}
		seenTopics[key] = true

		items = append(items, &PlanItem{
			Question: fallbackQuestion(persona, c.topic),
			Persona:  persona,
			Topic:    c.topic,
			Priority: c.priority,
			Depth:    tools.DepthModerate,
		})
	}

	// A sparse brief can exhaust the candidates before the quota is met.
	// Numbered rounds over the default topics pad the remainder so the plan
	// always reaches full length.
	bases := defaultTopics[persona]
	for round := 2; len(items) < missing && len(bases) > 0; round++ {
		for _, base := range bases {
			if len(items) == missing {
				break
			}
			topic := fmt.Sprintf("%s (%d)", base, round)
			key := strings.ToLower(topic)
			if seenTopics[key] {
				continue
			}
			seenTopics[key] = true

			items = append(items, &PlanItem{
				Question: fallbackQuestion(persona, base),
				Persona:  persona,
				Topic:    topic,
				Priority: tools.PriorityLow,
				Depth:    tools.DepthModerate,
			})
		}
	}

	return items
}

// defaultTopics keep the plan buildable even from an empty brief.
var defaultTopics = map[string][]string{
	tools.PersonaHM:   {"cross-team collaboration", "handling ambiguity", "project ownership"},
	tools.PersonaTech: {"system design trade-offs", "debugging a production incident", "code quality practices"},
	tools.PersonaHR:   {"motivation for this role", "career goals", "handling feedback"},
}

func fallbackQuestion(persona, topic string) string {
	switch persona {
	case tools.PersonaTech:
		return fmt.Sprintf("Walk me through a concrete piece of work involving %s. What were the hard parts?", topic)
	case tools.PersonaHR:
		return fmt.Sprintf("Tell me about a time %s mattered in your work. How did you handle it?", topic)
	default:
		return fmt.Sprintf("Describe a situation where you demonstrated %s. What was the outcome?", topic)
	}
}

func planContext(brief *research.Brief, resume *research.ResumeProfile) string {
	parts := []string{brief.Context(2000)}
	if resume != nil {
		parts = append(parts, resume.Context(2000))
	}
	return strings.Join(parts, "\n")
}

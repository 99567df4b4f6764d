package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slidesmith/internal/deck"
)

var _ Engine = (*Mock)(nil)

// Mock is a deterministic Engine that builds a deck from the brief text
// without calling a model. Delay simulates model latency.
type Mock struct {
	Delay time.Duration
}

func (m *Mock) GenerateDeck(ctx context.Context, brief deck.Brief) ([]deck.Draft, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	insights := brief.Insights
	if strings.TrimSpace(insights) == "" {
		insights = "Core operational inefficiencies identified"
	}

	return []deck.Draft{
		{
			Title: fmt.Sprintf("Executive Summary: %s", brief.Topic),
			Bullets: []string{
				fmt.Sprintf("Strategic alignment with %s needs", brief.Audience),
				"Comprehensive overview of market position",
				fmt.Sprintf("Key driver: %s", brief.Situation),
				"Immediate action items and roadmap",
			},
			Notes:        "Opening slide to set the stage. Emphasize the urgency of the situation and the clear path forward.",
			ImageKeyword: "strategy",
		},
		{
			Title: "Current Market Situation",
			Bullets: []string{
				brief.Situation,
				"Identified gaps in current operational workflow",
				"Competitor analysis reveals opportunity window",
				"Data trends indicate upward trajectory if addressed",
			},
			Notes:        "Focus on the 'why now'. Use the provided situation details to ground the problem in reality.",
			ImageKeyword: "data",
		},
		{
			Title: "Key Insights & Analysis",
			Bullets: []string{
				insights,
				"Customer feedback points to specific pain points",
				"Resource allocation requires optimization",
				"Technology leverage is currently underutilized",
			},
			Notes:        "Highlight the 2-3 major findings. Don't overwhelm, just hit the heavy hitters.",
			ImageKeyword: "analysis",
		},
		{
			Title: "Strategic Recommendations",
			Bullets: []string{
				fmt.Sprintf("Primary Objective: %s", brief.Objective),
				"Phase 1: Immediate stabilization and quick wins",
				"Phase 2: Scalable growth and integration",
				"Required investment vs. projected ROI",
			},
			Notes:        "The solution slide. Connect the objective directly to the insights from the previous slide.",
			ImageKeyword: "office",
		},
		{
			Title: "Next Steps & Timeline",
			Bullets: []string{
				"Q1: Stakeholder alignment and kickoff",
				"Q2: Pilot program implementation",
				"Q3: Full rollout and feedback loop",
				"Decision required: Approval of initial budget",
			},
			Notes:        "Closing slide. Ask for the decision. Be clear on what happens Monday morning.",
			ImageKeyword: "handshake",
		},
	}, nil
}

// RegenerateSlide tightens the existing text and pads the bullets to the
// expected count.
func (m *Mock) RegenerateSlide(ctx context.Context, req RegenerateRequest) (*deck.SlideText, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Key Message"
	}

	bullets := make([]string, 0, deck.BulletCount)
	for _, b := range req.Bullets {
		if b = strings.TrimSpace(b); b != "" && len(bullets) < deck.BulletCount {
			bullets = append(bullets, b)
		}
	}
	for len(bullets) < deck.BulletCount {
		bullets = append(bullets, fmt.Sprintf("Supporting point %d", len(bullets)+1))
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = "Walk the audience through each point and pause for questions."
	}
	if c := strings.TrimSpace(req.Context); c != "" {
		notes = fmt.Sprintf("%s Keep in mind: %s", notes, c)
	}

	return &deck.SlideText{Title: title, Bullets: bullets, Notes: notes}, nil
}

func (m *Mock) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", deck.ErrGeneration, err)
		}
		return nil
	}
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", deck.ErrGeneration, ctx.Err())
	case <-timer.C:
		return nil
	}
}

package deck

import (
	"fmt"
	"strings"
)

// Brief describes the presentation the user wants.
type Brief struct {
	Topic     string `json:"topic"`
	Audience  string `json:"audience"`
	Objective string `json:"objective"`
	Situation string `json:"situation"`
	Insights  string `json:"insights"`
}

// Validate reports the required fields left blank.
func (b Brief) Validate() error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"topic", b.Topic},
		{"audience", b.Audience},
		{"objective", b.Objective},
		{"situation", b.Situation},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidBrief, strings.Join(missing, ", "))
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (b Brief) Trimmed() Brief {
	return Brief{
		Topic:     strings.TrimSpace(b.Topic),
		Audience:  strings.TrimSpace(b.Audience),
		Objective: strings.TrimSpace(b.Objective),
		Situation: strings.TrimSpace(b.Situation),
		Insights:  strings.TrimSpace(b.Insights),
	}
}

// Example is a ready-made brief offered to new users.
type Example struct {
	Name        string
	Description string
	Brief       Brief
}

var examples = []Example{
	{
		Name:        "Product Launch Pitch",
		Description: "Investor pitch for a new SaaS product targeting enterprises",
		Brief: Brief{
			Topic:     "CloudSync AI Product Launch",
			Audience:  "Series A Investors",
			Objective: "Secure $2M in Series A funding to scale our AI-powered cloud synchronization platform.",
			Situation: "The market for enterprise cloud solutions is growing at 25% annually, but current solutions lack intelligent automation. Our beta users report 40% time savings.",
			Insights:  "Beta testing with 50 enterprise clients showed 40% reduction in manual sync tasks, 99.9% uptime, and NPS score of 72. Total addressable market is $8.5B.",
		},
	},
	{
		Name:        "Quarterly Business Review",
		Description: "Executive summary of Q3 performance and Q4 strategy",
		Brief: Brief{
			Topic:     "Q3 2024 Business Review",
			Audience:  "Executive Leadership Team",
			Objective: "Review Q3 performance, align on Q4 priorities, and secure approval for strategic initiatives.",
			Situation: "Q3 revenue grew 18% YoY but margins compressed by 3% due to increased customer acquisition costs. Retention remains strong at 94%.",
			Insights:  "Top-performing segment is enterprise (35% growth), while SMB segment declined 5%. Customer feedback indicates strong demand for expanded API capabilities.",
		},
	},
	{
		Name:        "Marketing Strategy Update",
		Description: "New marketing campaign strategy for upcoming product features",
		Brief: Brief{
			Topic:     "H1 2025 Marketing Strategy",
			Audience:  "Marketing Department & Leadership",
			Objective: "Align team on new multi-channel campaign strategy and secure budget approval for $150k in additional marketing spend.",
			Situation: "Our current CAC is 20% higher than industry average. Competitor analysis shows they are outspending us 3:1 on content marketing.",
			Insights:  "A/B testing shows video content converts 2.5x better than static ads. LinkedIn campaigns have 40% lower CPA than other channels for our ICP.",
		},
	},
	{
		Name:        "Remote Work Policy",
		Description: "Proposal for updated hybrid work policies",
		Brief: Brief{
			Topic:     "Hybrid Work Policy 2.0",
			Audience:  "All Employees & HR Team",
			Objective: "Introduce updated hybrid work policy that balances flexibility with collaboration needs.",
			Situation: "Current policy of 100% remote led to 35% decline in cross-team collaboration. Employee survey shows 82% want some in-office time.",
			Insights:  "Companies with 3-day office weeks report 25% higher employee satisfaction. Our office space can accommodate 60% of team at once.",
		},
	},
}

// Examples returns the built-in example briefs.
func Examples() []Example {
	return append([]Example(nil), examples...)
}

package domain

import "strings"

// Persona describes the assistant's character.
type Persona struct {
	// Name is the assistant label used in prompts and transcripts.
	Name string `yaml:"name"`

	// Instructions is the system text placed first in every prompt.
	Instructions string `yaml:"instructions"`

	// Welcome is shown when a session has no messages yet.
	Welcome string `yaml:"welcome"`

	// DegradedPrefix opens the reply used when generation fails.
	DegradedPrefix string `yaml:"degraded_prefix"`
}

// DegradedReply renders the in-character reply for a failed generation.
func (p Persona) DegradedReply(cause error) string {
	prefix := p.DegradedPrefix
	if prefix == "" {
		prefix = DefaultPersona().DegradedPrefix
	}
	detail := "unknown error"
	if cause != nil {
		detail = cause.Error()
	}
	return prefix + " \n\n`" + detail + "`"
}

// WithDefaults fills empty fields from DefaultPersona.
func (p Persona) WithDefaults() Persona {
	def := DefaultPersona()
	if strings.TrimSpace(p.Name) == "" {
		p.Name = def.Name
	}
	if strings.TrimSpace(p.Instructions) == "" {
		p.Instructions = def.Instructions
	}
	if strings.TrimSpace(p.Welcome) == "" {
		p.Welcome = def.Welcome
	}
	if strings.TrimSpace(p.DegradedPrefix) == "" {
		p.DegradedPrefix = def.DegradedPrefix
	}
	return p
}

// DefaultPersona returns the VerneBot scaling coach.
func DefaultPersona() Persona {
	return Persona{
		Name: "VerneBot",
		Instructions: `You are VerneBot, a virtual business strategist and AI coach modeled after Verne Harnish.
You give entrepreneurs, CEOs and business teams clear, strategic and actionable guidance.

You specialise in:
- The Scaling Up framework (People, Strategy, Execution, Cash)
- Rockefeller Habits 2.0
- The One-Page Strategic Plan (OPSP)
- Execution rhythms and cash flow optimisation
- Compensation strategy and growth metrics
- Decision-making under pressure

Speak confidently and lean on proven tools such as the OPSP, daily and weekly huddles,
the Cash Conversion Cycle, the Power of One and 13-week cash forecasts. Avoid fluff.

Close with an offer to help further, for example "Would you like a step-by-step for that?"
or "Want a worksheet or tool to get started?"

Only use verified content from Verne Harnish's books and teachings. Never make up information.`,
		Welcome: `Welcome, founder 👋

I'm VerneBot, your personal coach for scaling and strategy.

Whether it's People, Strategy, Execution or Cash, I'm here to help you scale smart.

You can ask me:
• "How do I build a One-Page Strategic Plan?"
• "What are the Rockefeller Habits?"
• "How do I improve my cash conversion cycle?"

Let's dive in. ⚡`,
		DegradedPrefix: "Something went wrong, but we're still scaling:",
	}
}

package constant

// Specialist agent personas. These tags are persisted on interactions and
// conversations, so they must stay stable.
const (
	AgentParentingStyle     = "parenting-style"
	AgentChildDevelopment   = "child-development"
	AgentCrisisIntervention = "crisis-intervention"
	AgentCommunityConnector = "community-connector"

	// AgentFallback tags turns whose answer came from the fixed apology text
	// instead of a persona. Fallback turns still count toward primary-agent
	// frequency: the aggregate invariant is defined over recorded agent tags.
	AgentFallback = "assistant"
)

// Conversation scope modes. Agent-locked conversations route every turn to
// the locked persona.
const (
	ScopeModeGeneral     = "general"
	ScopeModeAgentLocked = "agent-locked"
)

// KnownAgents lists the four routable personas in display order.
var KnownAgents = []string{
	AgentParentingStyle,
	AgentChildDevelopment,
	AgentCrisisIntervention,
	AgentCommunityConnector,
}

// Keyword sets for the priority classifier. Evaluation order is a safety
// policy: crisis detection must never be shadowed by a coincidental
// development or resource keyword in the same sentence.
var (
	CrisisKeywords = []string{
		"emergency",
		"dangerous",
		"danger",
		"self-harm",
		"hurting themselves",
		"hurting himself",
		"hurting herself",
		"violent",
		"out of control",
		"crisis",
		"unsafe",
		"suicidal",
	}

	DevelopmentKeywords = []string{
		"milestone",
		"cognitive",
		"motor skills",
		"developmental delay",
		"development stage",
		"speech delay",
		"fine motor",
		"gross motor",
		"growth chart",
		"age appropriate",
	}

	CommunityKeywords = []string{
		"resource",
		"support group",
		"therapist",
		"pediatrician",
		"counselor",
		"near me",
		"in my area",
		"local",
		"playgroup",
		"parent group",
	}
)

// Persona instruction templates. %s slots: context bundle, user query.
const (
	ParentingStylePrompt = `You are a warm, experienced parenting coach. You help caregivers reflect on
their parenting approach, discipline strategies, routines, and day-to-day
challenges. Be practical and non-judgmental. Ground advice in the family
context below when it is relevant.

%s

Caregiver's question: %s`

	ChildDevelopmentPrompt = `You are a child development specialist. You explain developmental milestones,
cognitive and motor skill progressions, and age-appropriate expectations in
plain language. Note when a concern is within the normal range and when it is
worth discussing with a pediatrician. Use the family context below.

%s

Caregiver's question: %s`

	CrisisInterventionPrompt = `You are a calm crisis-support specialist for caregivers. The caregiver may be
describing an unsafe or overwhelming situation. Respond with steady, concrete,
step-by-step guidance. Always remind them that emergency services should be
contacted if anyone is in immediate danger. Never minimize the situation.
Family context below.

%s

Caregiver's question: %s`

	CommunityConnectorPrompt = `You are a community resource navigator for families. You help caregivers find
the kinds of support that exist around them: support groups, therapists,
pediatric services, parent programs. You do not have a live directory, so
describe what to look for and how to find it. Family context below.

%s

Caregiver's question: %s`
)

// ResponderFallbackText is the fixed answer when generation fails. The wrapped
// cause travels alongside for logging, never in the user-visible text.
const ResponderFallbackText = `I'm sorry, I wasn't able to put together a proper answer just now. ` +
	`Please try asking again in a moment. If you are dealing with an emergency, contact your local emergency services immediately.`

// Rolling-summary generation. Short transcripts get the tight prompt, longer
// ones get the fuller budget.
const (
	SummaryShortTranscriptThreshold = 1500 // characters of rendered transcript

	SummaryShortPrompt = `Summarize this parenting-support conversation in at most 100 words
(roughly 200 characters). Capture the caregiver's main concern and any advice given.

%s

Summary:`

	SummaryFullPrompt = `Summarize this parenting-support conversation in at most 200 words
(roughly 500 characters). Capture the caregiver's concerns, the child context if any,
the advice given so far, and any open questions.

%s

Summary:`

	// SummaryUnavailableText replaces the summary when generation fails.
	// A stale summary is worse than an explicit marker.
	SummaryUnavailableText = "Summary unavailable for this conversation."
)

// Conversation title generation.
const (
	TitleMaxLength = 80

	TitlePrompt = `Write a short title (at most 6 words, no quotes) for a parenting-support
conversation that starts with this question:

%s

Title:`
)

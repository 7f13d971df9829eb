package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptQASystem is the system instruction for answering questions.
	// It governs tone, language and citation discipline. No placeholders.
	PromptQASystem = "qa_system"

	// PromptQAContext wraps retrieved passages into the system message.
	// The template expects a single %s placeholder for the passages.
	PromptQAContext = "qa_context"

	// PromptCondenseQuestion rewrites a follow-up into a standalone question.
	// The template expects %s (history) and %s (question) placeholders.
	PromptCondenseQuestion = "condense_question"
)

package domain

// Role identifies who produced a conversation turn.
type Role string

const (
	// RoleUser is a question from the user.
	RoleUser Role = "user"

	// RoleAssistant is a generated answer.
	RoleAssistant Role = "assistant"
)

// Turn is a single (role, text) entry of a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Citation is a user-facing reference to retrieved source content.
type Citation struct {
	DocumentID string       `json:"document_id"`
	SourceName string       `json:"source_name"`
	Type       DocumentType `json:"type"`
	Category   string       `json:"category"`
	Preview    string       `json:"preview"`
	Score      float64      `json:"score"`
}

// Answer is the result of one question.
type Answer struct {
	// Text is the answer with the citation block appended.
	Text string `json:"text"`

	// Raw is the generated answer before citation formatting.
	Raw string `json:"raw"`

	// Citations are the deduplicated sources backing the answer.
	Citations []Citation `json:"citations"`

	// Query is the text used for retrieval. It differs from the question
	// when follow-up condensation is enabled.
	Query string `json:"query"`
}

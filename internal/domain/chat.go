package domain

// Turn roles as supplied by the caller in conversation history.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// ConversationTurn is a single chat turn supplied by the caller. The service
// is stateless: the last turn is the one being answered, everything before it
// is history.
type ConversationTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// CompanyContext carries everything known about the company a new hire is
// asking about. All fields are optional; absent values render as "Unknown" or
// are omitted from the knowledge block.
type CompanyContext struct {
	Name     string `json:"name,omitempty"`
	Size     string `json:"size,omitempty"`
	Industry string `json:"industry,omitempty"`

	// Insights maps an analysis category to free text derived from prior
	// document analysis.
	Insights map[string]string `json:"insights,omitempty"`

	// Culture holds free-text interview answers in the order they were given.
	Culture []string `json:"culture,omitempty"`

	// Documents lists uploaded document filenames.
	Documents []string `json:"documents,omitempty"`

	// FullDocumentContent is the concatenated extracted text of all uploaded
	// documents, or the "No documents uploaded" sentinel.
	FullDocumentContent string `json:"fullDocumentContent,omitempty"`
}

// Persona is a named behavioral profile used to parameterize generated
// replies. Personas are immutable after catalog initialization.
type Persona struct {
	Key     string
	Name    string
	Role    string
	Context string
	Focus   string
}

package models

// Role identifies who produced a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the dialog, in the order it was produced.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Accumulated is the session's running union of everything extracted so
// far. Each list preserves insertion order of first appearance; membership
// comparisons are case-insensitive but the first-seen casing is kept.
type Accumulated struct {
	Labels       []string `json:"labels"`
	Tags         []string `json:"tags"`
	Integrations []string `json:"integrations"`
	PriceMax     *float64 `json:"price_max"`
}

// Missing reports how many more values are needed per dimension before the
// session is valid. Zero means the dimension's threshold is met.
type Missing struct {
	LabelsNeeded       int `json:"labels_needed"`
	TagsNeeded         int `json:"tags_needed"`
	IntegrationsNeeded int `json:"integrations_needed"`
}

// Session is the client-held continuation carried across start/continue/
// finalize calls. It has no server-side storage; the caller round-trips it.
type Session struct {
	Turns       []Turn      `json:"turns"`
	Accumulated Accumulated `json:"accumulated"`
	Missing     Missing     `json:"missing"`
	IsValid     bool        `json:"is_valid"`
}

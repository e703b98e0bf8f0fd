package domain

// ChatSnapshot is the persisted form of the session store.
type ChatSnapshot struct {
	Sessions         []Session `json:"sessions"`
	CurrentSessionID string    `json:"currentSessionId,omitempty"`
	Language         Language  `json:"language"`
}

// AuthSnapshot is the persisted form of the authentication state.
type AuthSnapshot struct {
	User            *User  `json:"user"`
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

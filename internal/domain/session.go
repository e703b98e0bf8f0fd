package domain

import "time"

// Session is one conversation thread with its ordered message history.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Language  Language  `json:"language"`
}

// Clone returns a copy of the session that shares no message storage with s.
func (s Session) Clone() Session {
	c := s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return c
}

// LastMessage returns the most recent message, or false if there is none.
func (s Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

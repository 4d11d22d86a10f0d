package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in a session's conversation. Turns are
// immutable once appended; slice order is chronological.
type ConversationTurn struct {
	ID      string   `json:"id"`
	Role    Role     `json:"role"`
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
}

// FollowUpContext caches the most recent successful question/answer pair.
// A nil pointer means no prior exchange; a non-nil value always carries both.
type FollowUpContext struct {
	Question string
	Answer   string
}

// QnAResult is the outcome of an initial document Q&A request. Follow-up
// answers carry no sources.
type QnAResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// KeywordSearch is a completed keyword extraction: the keyword and what the
// model found for it.
type KeywordSearch struct {
	Keyword       string `json:"keyword"`
	ExtractedInfo string `json:"extractedInfo"`
}

// HistoryEntry is an immutable snapshot of a finished session.
type HistoryEntry struct {
	ID            string             `json:"id"`
	CreatedAt     time.Time          `json:"createdAt"`
	FileName      string             `json:"fileName"`
	FileType      string             `json:"fileType"`
	KeywordSearch *KeywordSearch     `json:"keywordSearch,omitempty"`
	Conversation  []ConversationTurn `json:"conversation,omitempty"`
}

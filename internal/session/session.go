package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"docanalyze/internal/helper"
	"docanalyze/internal/models"

	"github.com/rs/zerolog/log"
)

// failedAnswerText is the synthetic assistant turn appended when a question
// request fails.
const failedAnswerText = "Sorry, I couldn't process that question. Please try again."

// PromptService answers structured natural-language requests against
// document content.
type PromptService interface {
	ExtractKeyword(ctx context.Context, ref models.DocumentRef, keyword string) (string, error)
	AnswerQuestion(ctx context.Context, ref models.DocumentRef, question string) (models.QnAResult, error)
	AnswerFollowUp(ctx context.Context, ref models.DocumentRef, prev models.FollowUpContext, question string) (string, error)
}

// HistorySink receives finished session snapshots.
type HistorySink interface {
	Append(ctx context.Context, entry models.HistoryEntry) error
}

// Controller owns the working state for one document's analysis activity and
// decides, per question, whether to issue a fresh Q&A request or a follow-up
// carrying the previous exchange. At most one operation runs at a time; a
// second caller gets ErrBusy rather than being queued.
type Controller struct {
	mu      sync.Mutex
	prompts PromptService
	history HistorySink

	doc           *models.Document
	keyword       string
	extractedInfo *string
	conversation  []models.ConversationTurn
	followUp      *models.FollowUpContext
}

func NewController(prompts PromptService, history HistorySink) *Controller {
	return &Controller{prompts: prompts, history: history}
}

// Ingest replaces any existing session with a fresh one holding only doc.
// Unsaved state from the previous session is discarded without warning.
func (c *Controller) Ingest(doc *models.Document) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()

	if c.doc != nil {
		log.Debug().Str("previous", c.doc.FileName).Msg("discarding unsaved session state")
	}
	c.reset()
	c.doc = doc
	log.Info().Str("file", doc.FileName).Str("type", doc.MimeType).Msg("document ingested")
	return nil
}

// ExtractKeyword asks the model for document passages relevant to keyword
// and stores the result. On failure the previous result is already cleared
// and stays unset; no error text is stored in its place.
func (c *Controller) ExtractKeyword(ctx context.Context, keyword string) (string, error) {
	if !c.mu.TryLock() {
		return "", ErrBusy
	}
	defer c.mu.Unlock()

	if c.doc == nil {
		return "", fmt.Errorf("%w: upload a document before extracting", ErrNoDocument)
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", fmt.Errorf("%w: keyword", ErrValidation)
	}

	c.extractedInfo = nil

	info, err := c.prompts.ExtractKeyword(ctx, c.doc.Ref(), keyword)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	c.keyword = keyword
	c.extractedInfo = &info
	return info, nil
}

// AskQuestion appends the user's turn, routes the request (follow-up when a
// previous exchange exists, initial Q&A otherwise) and appends the answer.
// On request failure a synthetic apology turn is appended instead and the
// follow-up context keeps its pre-call value, so the next question retries
// against the last successful exchange.
func (c *Controller) AskQuestion(ctx context.Context, question string) (models.ConversationTurn, error) {
	if !c.mu.TryLock() {
		return models.ConversationTurn{}, ErrBusy
	}
	defer c.mu.Unlock()

	question = strings.TrimSpace(question)
	if question == "" {
		return models.ConversationTurn{}, fmt.Errorf("%w: question", ErrValidation)
	}

	c.appendTurn(models.RoleUser, question, nil)

	switch {
	case c.followUp != nil && c.doc != nil:
		answer, err := c.prompts.AnswerFollowUp(ctx, c.followUpRef(), *c.followUp, question)
		if err != nil {
			return c.appendTurn(models.RoleAssistant, failedAnswerText, nil),
				fmt.Errorf("%w: %v", ErrQnA, err)
		}
		c.followUp = &models.FollowUpContext{Question: question, Answer: answer}
		return c.appendTurn(models.RoleAssistant, answer, nil), nil

	case c.doc != nil:
		result, err := c.prompts.AnswerQuestion(ctx, c.doc.Ref(), question)
		if err != nil {
			return c.appendTurn(models.RoleAssistant, failedAnswerText, nil),
				fmt.Errorf("%w: %v", ErrQnA, err)
		}
		c.followUp = &models.FollowUpContext{Question: question, Answer: result.Answer}
		return c.appendTurn(models.RoleAssistant, result.Answer, result.Sources), nil

	default:
		return models.ConversationTurn{}, fmt.Errorf("%w: upload a document first", ErrNoDocument)
	}
}

// Save snapshots the session into history and resets it. All-or-nothing: a
// persistence failure leaves the session untouched for a retry.
func (c *Controller) Save(ctx context.Context) (*models.HistoryEntry, error) {
	if !c.mu.TryLock() {
		return nil, ErrBusy
	}
	defer c.mu.Unlock()

	if c.doc == nil {
		return nil, fmt.Errorf("%w: upload a document and interact with it first", ErrNoActiveSession)
	}
	hasKeywordResult := c.keyword != "" && c.extractedInfo != nil
	if !hasKeywordResult && len(c.conversation) == 0 {
		return nil, fmt.Errorf("%w: nothing to save", ErrNoActiveSession)
	}

	id, err := helper.GenerateUUID()
	if err != nil {
		id = strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	entry := models.HistoryEntry{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		FileName:  c.doc.FileName,
		FileType:  c.doc.MimeType,
	}
	if hasKeywordResult {
		entry.KeywordSearch = &models.KeywordSearch{
			Keyword:       c.keyword,
			ExtractedInfo: *c.extractedInfo,
		}
	}
	if len(c.conversation) > 0 {
		entry.Conversation = append([]models.ConversationTurn(nil), c.conversation...)
	}

	if err := c.history.Append(ctx, entry); err != nil {
		return nil, err
	}

	c.reset()
	log.Info().Str("id", entry.ID).Msg("session saved to history")
	return &entry, nil
}

// Snapshot is a read-only copy of the current session state.
type Snapshot struct {
	FileName           string                    `json:"fileName,omitempty"`
	FileType           string                    `json:"fileType,omitempty"`
	PageCount          int                       `json:"pageCount,omitempty"`
	Keyword            string                    `json:"keyword,omitempty"`
	ExtractedInfo      *string                   `json:"extractedInfo,omitempty"`
	Conversation       []models.ConversationTurn `json:"conversation"`
	HasFollowUpContext bool                      `json:"hasFollowUpContext"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Keyword:            c.keyword,
		Conversation:       append([]models.ConversationTurn(nil), c.conversation...),
		HasFollowUpContext: c.followUp != nil,
	}
	if c.doc != nil {
		snap.FileName = c.doc.FileName
		snap.FileType = c.doc.MimeType
		snap.PageCount = c.doc.PageCount
	}
	if c.extractedInfo != nil {
		info := *c.extractedInfo
		snap.ExtractedInfo = &info
	}
	return snap
}

// followUpRef resolves the document context for a follow-up request:
// extracted text when available, the data URI otherwise. The filename
// description is a degraded fallback for a document with neither.
func (c *Controller) followUpRef() models.DocumentRef {
	if c.doc.TextAvailable() {
		return models.TextRef(c.doc.Text)
	}
	if c.doc.DataURI != "" {
		return models.URIRef(c.doc.DataURI)
	}
	return models.TextRef(fmt.Sprintf(
		"Document context is based on the uploaded file: %s. Previous interactions are key.", c.doc.FileName))
}

func (c *Controller) appendTurn(role models.Role, text string, sources []string) models.ConversationTurn {
	id, err := helper.GenerateUUID()
	if err != nil {
		id = strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	turn := models.ConversationTurn{ID: id, Role: role, Text: text, Sources: sources}
	c.conversation = append(c.conversation, turn)
	return turn
}

func (c *Controller) reset() {
	c.doc = nil
	c.keyword = ""
	c.extractedInfo = nil
	c.conversation = nil
	c.followUp = nil
}

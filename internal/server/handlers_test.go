package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docanalyze/internal/config"
	"docanalyze/internal/history"
	"docanalyze/internal/models"
	"docanalyze/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	snap       session.Snapshot
	ingested   *models.Document
	info       string
	turn       models.ConversationTurn
	entry      *models.HistoryEntry
	extractErr error
	askErr     error
	saveErr    error
}

func (s *stubSessions) Ingest(doc *models.Document) error {
	s.ingested = doc
	return nil
}

func (s *stubSessions) ExtractKeyword(ctx context.Context, keyword string) (string, error) {
	return s.info, s.extractErr
}

func (s *stubSessions) AskQuestion(ctx context.Context, question string) (models.ConversationTurn, error) {
	return s.turn, s.askErr
}

func (s *stubSessions) Save(ctx context.Context) (*models.HistoryEntry, error) {
	return s.entry, s.saveErr
}

func (s *stubSessions) Snapshot() session.Snapshot {
	return s.snap
}

type stubHistorySvc struct {
	entries  []models.HistoryEntry
	clearErr error
}

func (s *stubHistorySvc) List(ctx context.Context) ([]models.HistoryEntry, error) {
	return s.entries, nil
}

func (s *stubHistorySvc) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return &s.entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", history.ErrNotFound, id)
}

func (s *stubHistorySvc) Clear(ctx context.Context) error {
	return s.clearErr
}

func testServer(sessions SessionService, store HistoryService) *Server {
	return New(&config.ServerConfig{Addr: ":0", BodyLimitMB: 1}, sessions, store)
}

func jsonRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestShowSession(t *testing.T) {
	srv := testServer(&stubSessions{snap: session.Snapshot{FileName: "notes.txt"}}, &stubHistorySvc{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/session", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "notes.txt")
}

func TestExtract_MissingKeywordRejected(t *testing.T) {
	srv := testServer(&stubSessions{}, &stubHistorySvc{})

	resp, err := srv.App().Test(jsonRequest(http.MethodPost, "/api/session/extract", `{}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtract_Success(t *testing.T) {
	srv := testServer(&stubSessions{info: "The budget is $500."}, &stubHistorySvc{})

	resp, err := srv.App().Test(jsonRequest(http.MethodPost, "/api/session/extract", `{"keyword":"budget"}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var envelope struct {
		Data struct {
			RelevantInformation string `json:"relevantInformation"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "The budget is $500.", envelope.Data.RelevantInformation)
}

func TestExtract_PromptFailureMapsToBadGateway(t *testing.T) {
	sessions := &stubSessions{extractErr: fmt.Errorf("%w: model unavailable", session.ErrExtraction)}
	srv := testServer(sessions, &stubHistorySvc{})

	resp, err := srv.App().Test(jsonRequest(http.MethodPost, "/api/session/extract", `{"keyword":"budget"}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAsk_NoDocumentMapsToConflict(t *testing.T) {
	sessions := &stubSessions{askErr: fmt.Errorf("%w: upload a document first", session.ErrNoDocument)}
	srv := testServer(sessions, &stubHistorySvc{})

	resp, err := srv.App().Test(jsonRequest(http.MethodPost, "/api/session/question", `{"question":"Q1"}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUploadDocument(t *testing.T) {
	sessions := &stubSessions{}
	srv := testServer(sessions, &stubHistorySvc{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("The budget is $500."))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/session/document", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := srv.App().Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, sessions.ingested)
	assert.Equal(t, models.MimeTXT, sessions.ingested.MimeType)
	assert.Equal(t, "The budget is $500.", sessions.ingested.Text)
}

func TestUploadDocument_UnsupportedType(t *testing.T) {
	srv := testServer(&stubSessions{}, &stubHistorySvc{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "sheet.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("a,b"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/session/document", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := srv.App().Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestHistoryExport(t *testing.T) {
	store := &stubHistorySvc{entries: []models.HistoryEntry{{
		ID:        "abc",
		CreatedAt: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
		FileName:  "notes.txt",
		FileType:  models.MimeTXT,
		KeywordSearch: &models.KeywordSearch{
			Keyword:       "budget",
			ExtractedInfo: "The budget is $500.",
		},
		Conversation: []models.ConversationTurn{
			{ID: "1", Role: models.RoleUser, Text: "Q1"},
			{ID: "2", Role: models.RoleAssistant, Text: "A1", Sources: []string{"p1"}},
		},
	}}}
	srv := testServer(&stubSessions{}, store)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/history/abc/export", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	assert.Contains(t, html, "notes.txt")
	assert.Contains(t, html, "budget")
	assert.Contains(t, html, "A1")
}

func TestHistoryExport_MissingEntry(t *testing.T) {
	srv := testServer(&stubSessions{}, &stubHistorySvc{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/history/nope/export", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearHistory_FailureMapsToServerError(t *testing.T) {
	store := &stubHistorySvc{clearErr: fmt.Errorf("%w: locked", history.ErrPersistence)}
	srv := testServer(&stubSessions{}, store)

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodDelete, "/api/history", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

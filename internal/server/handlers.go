package server

import (
	"context"
	"io"

	"docanalyze/internal/ingest"
	"docanalyze/internal/models"
	"docanalyze/internal/session"

	"github.com/gofiber/fiber/v2"
)

// SessionService is the slice of the session controller the handlers use.
type SessionService interface {
	Ingest(doc *models.Document) error
	ExtractKeyword(ctx context.Context, keyword string) (string, error)
	AskQuestion(ctx context.Context, question string) (models.ConversationTurn, error)
	Save(ctx context.Context) (*models.HistoryEntry, error)
	Snapshot() session.Snapshot
}

// HistoryService is the read/clear side of the history log.
type HistoryService interface {
	List(ctx context.Context) ([]models.HistoryEntry, error)
	Get(ctx context.Context, id string) (*models.HistoryEntry, error)
	Clear(ctx context.Context) error
}

type ExtractRequest struct {
	Keyword string `json:"keyword" validate:"required"`
}

type QuestionRequest struct {
	Question string `json:"question" validate:"required"`
}

type SessionHandler struct {
	sessions SessionService
}

func NewSessionHandler(sessions SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/session")
	g.Get("", h.Show)
	g.Post("/document", h.UploadDocument)
	g.Post("/extract", h.Extract)
	g.Post("/question", h.Ask)
	g.Post("/save", h.Save)
}

func (h *SessionHandler) Show(ctx *fiber.Ctx) error {
	return ctx.JSON(SuccessResponse("Current session", h.sessions.Snapshot()))
}

func (h *SessionHandler) UploadDocument(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file upload")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	doc, err := ingest.FromFile(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}
	if err := h.sessions.Ingest(doc); err != nil {
		return err
	}

	return ctx.JSON(SuccessResponse("Document ready for analysis", fiber.Map{
		"fileName":      doc.FileName,
		"fileType":      doc.MimeType,
		"pageCount":     doc.PageCount,
		"textExtracted": doc.TextAvailable(),
	}))
}

func (h *SessionHandler) Extract(ctx *fiber.Ctx) error {
	var req ExtractRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := ValidateRequest(req); err != nil {
		return err
	}

	info, err := h.sessions.ExtractKeyword(ctx.Context(), req.Keyword)
	if err != nil {
		return err
	}
	return ctx.JSON(SuccessResponse("Information extracted", fiber.Map{
		"keyword":             req.Keyword,
		"relevantInformation": info,
	}))
}

func (h *SessionHandler) Ask(ctx *fiber.Ctx) error {
	var req QuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := ValidateRequest(req); err != nil {
		return err
	}

	turn, err := h.sessions.AskQuestion(ctx.Context(), req.Question)
	if err != nil {
		return err
	}
	return ctx.JSON(SuccessResponse("Question answered", turn))
}

func (h *SessionHandler) Save(ctx *fiber.Ctx) error {
	entry, err := h.sessions.Save(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(SuccessResponse("Session saved to history", entry))
}

type HistoryHandler struct {
	store HistoryService
}

func NewHistoryHandler(store HistoryService) *HistoryHandler {
	return &HistoryHandler{store: store}
}

func (h *HistoryHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/history")
	g.Get("", h.List)
	g.Delete("", h.Clear)
	g.Get("/:id/export", h.Export)
}

func (h *HistoryHandler) List(ctx *fiber.Ctx) error {
	entries, err := h.store.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(SuccessResponse("Interaction history", entries))
}

func (h *HistoryHandler) Clear(ctx *fiber.Ctx) error {
	if err := h.store.Clear(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(SuccessResponse("History cleared", nil))
}

func (h *HistoryHandler) Export(ctx *fiber.Ctx) error {
	entry, err := h.store.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	page, err := renderEntryHTML(entry)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.SendString(page)
}

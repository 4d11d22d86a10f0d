package prompt

import (
	"context"
	"fmt"
	"strings"

	"docanalyze/internal/config"
	"docanalyze/internal/helper"
	"docanalyze/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client talks to an OpenAI-compatible chat endpoint. Each call is a single
// shot: no retries, no streaming.
type Client struct {
	llm *openai.LLM
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

// ExtractKeyword asks the model for the document passages relevant to keyword.
func (c *Client) ExtractKeyword(ctx context.Context, ref models.DocumentRef, keyword string) (string, error) {
	raw, err := c.generate(ctx, ref, fmt.Sprintf(models.ExtractPromptTemplate, keyword))
	if err != nil {
		return "", err
	}

	var out struct {
		RelevantInformation string `json:"relevantInformation"`
	}
	if err := decodeModelJSON(raw, &out); err != nil || out.RelevantInformation == "" {
		// Some models ignore the JSON instruction; the cleaned text is still
		// the extraction result.
		return cleanModelOutput(raw), nil
	}
	return out.RelevantInformation, nil
}

// AnswerQuestion answers a fresh question against the document and reports
// the supporting sources.
func (c *Client) AnswerQuestion(ctx context.Context, ref models.DocumentRef, question string) (models.QnAResult, error) {
	raw, err := c.generate(ctx, ref, fmt.Sprintf(models.AnswerPromptTemplate, question))
	if err != nil {
		return models.QnAResult{}, err
	}

	var out models.QnAResult
	if err := decodeModelJSON(raw, &out); err != nil || out.Answer == "" {
		return models.QnAResult{Answer: cleanModelOutput(raw)}, nil
	}
	return out, nil
}

// AnswerFollowUp answers a question in the context of the previous exchange.
func (c *Client) AnswerFollowUp(ctx context.Context, ref models.DocumentRef, prev models.FollowUpContext, question string) (string, error) {
	instruction := fmt.Sprintf(models.FollowUpPromptTemplate, prev.Question, prev.Answer, question)
	raw, err := c.generate(ctx, ref, instruction)
	if err != nil {
		return "", err
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := decodeModelJSON(raw, &out); err != nil || out.Answer == "" {
		return cleanModelOutput(raw), nil
	}
	return out.Answer, nil
}

func (c *Client) generate(ctx context.Context, ref models.DocumentRef, instruction string) (string, error) {
	if ref.IsZero() {
		return "", fmt.Errorf("document ref carries no payload")
	}

	var parts []llms.ContentPart
	if ref.IsText() {
		parts = append(parts, llms.TextPart(fmt.Sprintf(models.DocumentTextPreamble, ref.Value())))
	} else {
		mimeType, data, err := helper.DecodeDataURI(ref.Value())
		if err != nil {
			return "", fmt.Errorf("decoding document uri: %w", err)
		}
		parts = append(parts,
			llms.TextPart(models.DocumentMediaPreamble),
			llms.BinaryPart(mimeType, data),
		)
	}
	parts = append(parts, llms.TextPart(instruction))

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	}

	log.Debug().Bool("textRef", ref.IsText()).Msg("Generating content")
	resp, err := c.llm.GenerateContent(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Content, nil
}

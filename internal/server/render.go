package server

import (
	"bytes"
	"fmt"
	"strings"

	"docanalyze/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// renderEntryHTML renders a history entry as a standalone HTML page for
// export. Model answers are frequently markdown, so they go through a
// markdown renderer rather than being escaped flat.
func renderEntryHTML(entry *models.HistoryEntry) (string, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", entry.FileName)
	fmt.Fprintf(&md, "Saved %s (%s)\n\n", entry.CreatedAt.Format("2006-01-02 15:04"), entry.FileType)

	if entry.KeywordSearch != nil {
		fmt.Fprintf(&md, "## Keyword Extraction: %s\n\n", entry.KeywordSearch.Keyword)
		fmt.Fprintf(&md, "%s\n\n", entry.KeywordSearch.ExtractedInfo)
	}

	if len(entry.Conversation) > 0 {
		md.WriteString("## Q&A Session\n\n")
		for _, turn := range entry.Conversation {
			label := "AI"
			if turn.Role == models.RoleUser {
				label = "You"
			}
			fmt.Fprintf(&md, "**%s:** %s\n\n", label, turn.Text)
			if len(turn.Sources) > 0 {
				md.WriteString("Sources:\n\n")
				for _, source := range turn.Sources {
					fmt.Fprintf(&md, "- %s\n", source)
				}
				md.WriteString("\n")
			}
		}
	}

	renderer := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md.String()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

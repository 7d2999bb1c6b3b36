// Package docx extracts plain text from uploaded .docx process documents.
package docx

import (
	"fmt"
	"io"
	"strings"

	godocx "github.com/fumiama/go-docx"
)

// Extract reads every paragraph of a .docx document and joins the paragraph
// texts with newlines. Empty paragraphs are preserved as empty lines. Tables
// and other non-paragraph content are skipped.
func Extract(r io.ReaderAt, size int64) (string, error) {
	doc, err := godocx.Parse(r, size)
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*godocx.Paragraph)
		if !ok {
			continue
		}
		paragraphs = append(paragraphs, paragraphText(para))
	}
	return strings.Join(paragraphs, "\n"), nil
}

func paragraphText(para *godocx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*godocx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if text, ok := rc.(*godocx.Text); ok {
				sb.WriteString(text.Text)
			}
		}
	}
	return sb.String()
}

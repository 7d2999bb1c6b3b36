package service

import "strings"

const (
	fenceOpen  = "```mermaid"
	fenceClose = "```"
)

// sanitizeMermaid strips the fenced code block markers an LLM tends to wrap
// its reply in, retrimming after each strip. Validation of the remaining text
// is left to the caller: generation and refinement react differently to a
// non-conforming reply.
func sanitizeMermaid(raw string) string {
	code := strings.TrimSpace(raw)
	if strings.HasPrefix(code, fenceOpen) {
		code = strings.TrimSpace(strings.TrimPrefix(code, fenceOpen))
	}
	if strings.HasSuffix(code, fenceClose) {
		code = strings.TrimSpace(strings.TrimSuffix(code, fenceClose))
	}
	return code
}

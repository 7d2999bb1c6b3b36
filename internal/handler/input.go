package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/flowchartai/backend/internal/docx"
	"github.com/flowchartai/backend/internal/metrics"
)

const docxExtension = ".docx"

const (
	msgNoFileSelected   = "No file selected."
	msgInvalidFileType  = "Invalid file type. Please upload a .docx file."
	msgExtractionFailed = "Error extracting text from DOCX file."
	msgEmptyText        = "Text input cannot be empty."
	msgNoInput          = "No valid input provided (text or .docx file)."
)

// resolveProcessText produces exactly one process description from the
// request, or a validation message for the caller. An uploaded file wins over
// the text field; if neither is usable the request is rejected, never
// silently defaulted.
func (h *FlowchartHandler) resolveProcessText(r *http.Request) (string, string) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", msgNoInput
	}

	if r.MultipartForm != nil {
		if headers := r.MultipartForm.File["file"]; len(headers) > 0 {
			return h.extractUpload(headers[0])
		}
		// A file input submitted with no file chosen arrives as an empty
		// value part, not a file part.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			return "", msgNoFileSelected
		}
	}

	if values, ok := r.PostForm["text"]; ok && len(values) > 0 {
		text := strings.TrimSpace(values[0])
		if text == "" {
			return "", msgEmptyText
		}
		return text, ""
	}

	return "", msgNoInput
}

func (h *FlowchartHandler) extractUpload(header *multipart.FileHeader) (string, string) {
	if header.Filename == "" {
		return "", msgNoFileSelected
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), docxExtension) {
		return "", msgInvalidFileType
	}

	start := time.Now()

	file, err := header.Open()
	if err != nil {
		metrics.DocxExtract(metrics.StatusError, time.Since(start))
		h.logger.Printf("failed to open upload %q: %v\n", header.Filename, err)
		return "", msgExtractionFailed
	}
	defer file.Close()

	text, err := docx.Extract(file, header.Size)
	if err != nil {
		metrics.DocxExtract(metrics.StatusError, time.Since(start))
		h.logger.Printf("failed to extract text from %q: %v\n", header.Filename, err)
		return "", msgExtractionFailed
	}
	if strings.TrimSpace(text) == "" {
		metrics.DocxExtract(metrics.StatusError, time.Since(start))
		return "", msgExtractionFailed
	}

	metrics.DocxExtract(metrics.StatusOK, time.Since(start))
	return text, ""
}

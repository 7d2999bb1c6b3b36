package handler

import (
	"bytes"
	"context"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/flowchartai/backend/internal/config"
	"github.com/flowchartai/backend/internal/models"
	"github.com/flowchartai/backend/internal/service"
	godocx "github.com/fumiama/go-docx"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	calls    int
	lastBody openai.ChatCompletionNewParams
	content  string
	err      error
}

func (s *stubChat) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.calls++
	s.lastBody = body
	if s.err != nil {
		return nil, s.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func newTestHandler(chat service.ChatCompleter, apiKey string) *FlowchartHandler {
	logger := log.New(io.Discard, "", 0)
	cfg := config.OpenAIConfig{
		APIKey:              apiKey,
		Model:               "gpt-3.5-turbo",
		GenerateMaxTokens:   1000,
		RefineMaxTokens:     1500,
		GenerateTemperature: 0.5,
		RefineTemperature:   0.6,
	}
	return NewFlowchartHandler(logger, service.NewFlowchartService(logger, chat, cfg), 10<<20)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, sonic.ConfigDefault.NewDecoder(rec.Body).Decode(&v))
	return v
}

func textFormRequest(text string) *http.Request {
	form := url.Values{"text": {text}}
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func fileFormRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	w := godocx.New().WithDefaultTheme()
	for _, text := range paragraphs {
		para := w.AddParagraph()
		if text != "" {
			para.AddText(text)
		}
	}
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestGenerate_TextInput(t *testing.T) {
	chat := &stubChat{content: "```mermaid\ngraph TD\nA-->B\n```"}
	h := newTestHandler(chat, "test-key")

	rec := httptest.NewRecorder()
	h.Generate(rec, textFormRequest("User logs in, then sees dashboard"))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[models.FlowchartResponse](t, rec)
	assert.Equal(t, "graph TD\nA-->B", resp.MermaidCode)
}

func TestGenerate_EmptyText(t *testing.T) {
	chat := &stubChat{}
	h := newTestHandler(chat, "test-key")

	rec := httptest.NewRecorder()
	h.Generate(rec, textFormRequest("   \n\t"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[models.ErrorResponse](t, rec)
	assert.Equal(t, "Text input cannot be empty.", resp.Error)
	assert.Zero(t, chat.calls)
}

func TestGenerate_NoInput(t *testing.T) {
	h := newTestHandler(&stubChat{}, "test-key")

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[models.ErrorResponse](t, rec)
	assert.Equal(t, "No valid input provided (text or .docx file).", resp.Error)
}

func TestGenerate_WrongExtension(t *testing.T) {
	chat := &stubChat{}
	h := newTestHandler(chat, "test-key")

	rec := httptest.NewRecorder()
	h.Generate(rec, fileFormRequest(t, "notes.txt", []byte("a perfectly fine text file")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[models.ErrorResponse](t, rec)
	assert.Equal(t, "Invalid file type. Please upload a .docx file.", resp.Error)
	assert.Zero(t, chat.calls)
}

func TestGenerate_NoFileSelected(t *testing.T) {
	h := newTestHandler(&stubChat{}, "test-key")

	rec := httptest.NewRecorder()
	h.Generate(rec, fileFormRequest(t, "", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[models.ErrorResponse](t, rec)
	assert.Equal(t, "No file selected.", resp.Error)
}

func TestGenerate_CorruptDocx(t *testing.T) {
	h := newTestHandler(&stubChat{}, "test-key")

	rec := httptest.NewRecorder()
	h.Generate(rec, fileFormRequest(t, "broken.docx", []byte("definitely not a zip archive")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[models.ErrorResponse](t, rec)
	assert.Equal(t, "Error extracting text from DOCX file.", resp.Error)
}

func TestGenerate_DocxUpload(t *testing.T) {
	chat := &stubChat{content: "```mermaid\ngraph TD\nA[Receive]-->B[Ship]\n```"}
	h := newTestHandler(chat, "test-key")

	content := docxBytes(t, "Order received", "", "Order shipped")
	rec := httptest.NewRecorder()
	h.Generate(rec, fileFormRequest(t, "process.docx", content))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[models.FlowchartResponse](t, rec)
	assert.Equal(t, "graph TD\nA[Receive]-->B[Ship]", resp.MermaidCode)

	require.Equal(t, 1, chat.calls)
	require.NotNil(t, chat.lastBody.Messages[1].OfUser)
	prompt := chat.lastBody.Messages[1].OfUser.Content.OfString.Value
	assert.Contains(t, prompt, "Order received\n\nOrder shipped")
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	chat := &stubChat{}
	h := newTestHandler(chat, "")

	rec := httptest.NewRecorder()
	h.Generate(rec, textFormRequest("User logs in, then sees dashboard"))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[models.FlowchartResponse](t, rec)
	assert.Equal(t, "graph TD\nError[LLM API Key Not Configured]", resp.MermaidCode)
	assert.Zero(t, chat.calls)
}

func refineRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/refine", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRefine_Success(t *testing.T) {
	chat := &stubChat{content: "```mermaid\ngraph TD\nA-->B\nB-->C\n```"}
	h := newTestHandler(chat, "test-key")

	rec := httptest.NewRecorder()
	h.Refine(rec, refineRequest(`{"current_mermaid":"graph TD\nA-->B","instruction":"add a step C after B"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[models.FlowchartResponse](t, rec)
	assert.Equal(t, "graph TD\nA-->B\nB-->C", resp.MermaidCode)
}

func TestRefine_InvalidJSON(t *testing.T) {
	h := newTestHandler(&stubChat{}, "test-key")

	rec := httptest.NewRecorder()
	h.Refine(rec, refineRequest("this is not json"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[models.ErrorResponse](t, rec)
	assert.Equal(t, "Invalid request data. Expected JSON.", resp.Error)
}

func TestRefine_MissingInstruction(t *testing.T) {
	chat := &stubChat{}
	h := newTestHandler(chat, "test-key")

	rec := httptest.NewRecorder()
	h.Refine(rec, refineRequest(`{"current_mermaid":"graph TD\nA-->B"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[models.ErrorResponse](t, rec)
	assert.Equal(t, "Missing 'current_mermaid' or 'instruction' in request.", resp.Error)
	assert.Zero(t, chat.calls)
}

func TestRefine_NonConformingReplyKeepsDiagram(t *testing.T) {
	chat := &stubChat{content: "Sorry, I can only refine valid diagrams."}
	h := newTestHandler(chat, "test-key")

	rec := httptest.NewRecorder()
	h.Refine(rec, refineRequest(`{"current_mermaid":"graph TD\nA-->B","instruction":"add a step C after B"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[models.FlowchartResponse](t, rec)
	assert.Equal(t, "graph TD\nA-->B\n%% LLM Error: Invalid refinement response", resp.MermaidCode)
}

func TestRecoverJSON(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	wrapped := RecoverJSON(logger, "An unexpected error occurred on the server.")(next)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody[models.ErrorResponse](t, rec)
	assert.Equal(t, "An unexpected error occurred on the server.", resp.Error)
}

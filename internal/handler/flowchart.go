package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/flowchartai/backend/internal/models"
	"github.com/flowchartai/backend/web"
)

type flowchartService interface {
	Generate(ctx context.Context, processText string) string
	Refine(ctx context.Context, currentMermaid, instruction string) string
}

type FlowchartHandler struct {
	logger         *log.Logger
	service        flowchartService
	maxUploadBytes int64
}

func NewFlowchartHandler(logger *log.Logger, service flowchartService, maxUploadBytes int64) *FlowchartHandler {
	return &FlowchartHandler{
		logger:         logger,
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Index serves the client page hosting the browser-side Mermaid renderer.
func (h *FlowchartHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.IndexHTML)
}

// Generate godoc
// @Summary Generate a Mermaid flowchart
// @Description Generate Mermaid flowchart code from a process description, given either as a text form field or as an uploaded .docx document.
// @Tags flowchart
// @Accept mpfd
// @Produce json
// @Param text formData string false "Process description"
// @Param file formData file false "Process description document (.docx)"
// @Success 200 {object} models.FlowchartResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /generate [post]
func (h *FlowchartHandler) Generate(w http.ResponseWriter, r *http.Request) {
	processText, errMsg := h.resolveProcessText(r)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	h.logger.Printf("generating flowchart for text (length: %d chars)\n", len(processText))
	code := h.service.Generate(r.Context(), processText)

	respondJSON(w, http.StatusOK, models.FlowchartResponse{MermaidCode: code})
}

// Refine godoc
// @Summary Refine an existing Mermaid flowchart
// @Description Apply a natural-language instruction to existing Mermaid flowchart code. On LLM failure the current diagram is returned with an appended error annotation.
// @Tags flowchart
// @Accept json
// @Produce json
// @Param request body models.RefineRequest true "Refine request"
// @Success 200 {object} models.FlowchartResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /refine [post]
func (h *FlowchartHandler) Refine(w http.ResponseWriter, r *http.Request) {
	var req models.RefineRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data. Expected JSON.")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Printf("refining flowchart with instruction: %q\n", req.Instruction)
	code := h.service.Refine(r.Context(), req.CurrentMermaid, req.Instruction)

	respondJSON(w, http.StatusOK, models.FlowchartResponse{MermaidCode: code})
}

package models

import "errors"

// FlowchartResponse is the payload returned by both the generate and refine
// endpoints. MermaidCode is always populated: LLM failures are embedded in
// the diagram text rather than raised as errors.
type FlowchartResponse struct {
	MermaidCode string `json:"mermaid_code" example:"graph TD\nA[Start]-->B[End]"`
}

// RefineRequest represents request for refine endpoint
type RefineRequest struct {
	CurrentMermaid string `json:"current_mermaid" validate:"required" example:"graph TD\nA-->B"`
	Instruction    string `json:"instruction" validate:"required" example:"add a step C after B"`
}

func (r RefineRequest) Validate() error {
	if r.CurrentMermaid == "" || r.Instruction == "" {
		return errors.New("Missing 'current_mermaid' or 'instruction' in request.")
	}
	return nil
}

type ErrorResponse struct {
	Error string `json:"error" example:"Text input cannot be empty."`
}

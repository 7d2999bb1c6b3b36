package service

const (
	opGenerate = "generate"
	opRefine   = "refine"
)

const (
	systemPromptGenerate = "You are an expert in generating Mermaid flowchart syntax."
	systemPromptRefine   = "You are an expert in refining Mermaid flowchart syntax based on instructions."

	generatePromptTemplate = `Convert the following process description into Mermaid flowchart syntax (using graph TD for top-down).
Keep the flowchart clear and concise. Use brief node descriptions.
Ensure the output is ONLY the Mermaid code block, starting with ` + "```mermaid and ending with ```" + `.

Process Description:
---
%s
---

Mermaid Code:`

	refinePromptTemplate = `Refine the following Mermaid flowchart based on the user's instruction.
Output ONLY the complete, updated Mermaid code block, starting with ` + "```mermaid and ending with ```" + `.
Do not include explanations or apologies.

Current Mermaid Code:
---
` + "```mermaid" + `
%s
` + "```" + `
---

User Instruction:
---
%s
---

Updated Mermaid Code:`
)

// Degraded payloads. Generation substitutes an error diagram because there is
// no prior state to fall back to; refinement appends a comment annotation and
// keeps the caller's diagram intact.
const (
	graphKeyword = "graph"

	degradedNoAPIKey      = "graph TD\nError[LLM API Key Not Configured]"
	degradedInvalidOutput = "graph TD\nError[LLM did not return valid Mermaid code]"
	degradedLLMErrorFmt   = "graph TD\nError[Error calling LLM: %v]"

	refineNoAPIKeyAnnotation = "\n%% Error: LLM API Key Not Configured"
	refineInvalidAnnotation  = "\n%% LLM Error: Invalid refinement response"
	refineLLMErrorFmt        = "%s\n%%%% LLM Error: %v"
)

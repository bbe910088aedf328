package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
)

// SchemaName is sent as the json_schema name in the response format.
const SchemaName = "complaint_analysis"

// analysisSchema mirrors complaints.AnalysisResult with descriptions for the model.
type analysisSchema struct {
	Summary    []string `json:"summary" jsonschema_description:"Key bullet points summarizing the complaint, capturing the main issues raised by the citizen."`
	Department string   `json:"department" jsonschema_description:"The single, most relevant government department this complaint should be routed to (e.g., 'Public Works Department', 'Health and Human Services', 'Department of Transportation')."`
	Analysis   string   `json:"analysis" jsonschema_description:"A detailed analysis of the complaint against common government rules and regulations. Explain how the rules might apply to the citizen's situation. Be neutral and objective."`
	Solutions  []string `json:"solutions" jsonschema_description:"A list of actionable, step-by-step suggested solutions or next steps for the official to consider. These should be practical and compliant with regulations."`
}

// ResponseSchema generates the structured-output schema. All four fields are required.
func ResponseSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := reflector.Reflect(&analysisSchema{})
	s.Version = ""
	s.ID = ""
	return s
}

var requiredFields = []string{"summary", "department", "analysis", "solutions"}

// ParseAnalysis decodes the model output and checks the four required fields.
func ParseAnalysis(content string) (complaints.AnalysisResult, error) {
	text := stripFence(strings.TrimSpace(content))
	if text == "" {
		return complaints.AnalysisResult{}, fmt.Errorf("empty response")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return complaints.AnalysisResult{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	for _, f := range requiredFields {
		v, ok := raw[f]
		if !ok || string(v) == "null" {
			return complaints.AnalysisResult{}, fmt.Errorf("missing field %q", f)
		}
	}

	var out complaints.AnalysisResult
	if err := json.Unmarshal(raw["summary"], &out.Summary); err != nil {
		return complaints.AnalysisResult{}, fmt.Errorf("field %q must be an array of strings", "summary")
	}
	if err := json.Unmarshal(raw["department"], &out.Department); err != nil {
		return complaints.AnalysisResult{}, fmt.Errorf("field %q must be a string", "department")
	}
	if err := json.Unmarshal(raw["analysis"], &out.Analysis); err != nil {
		return complaints.AnalysisResult{}, fmt.Errorf("field %q must be a string", "analysis")
	}
	if err := json.Unmarshal(raw["solutions"], &out.Solutions); err != nil {
		return complaints.AnalysisResult{}, fmt.Errorf("field %q must be an array of strings", "solutions")
	}
	if strings.TrimSpace(out.Department) == "" {
		return complaints.AnalysisResult{}, fmt.Errorf("field %q must be a non-empty string", "department")
	}
	if strings.TrimSpace(out.Analysis) == "" {
		return complaints.AnalysisResult{}, fmt.Errorf("field %q must be a non-empty string", "analysis")
	}
	return out, nil
}

// stripFence removes a ```json ... ``` wrapper some models add anyway.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

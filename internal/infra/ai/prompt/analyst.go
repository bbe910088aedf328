package prompt

import (
	"fmt"
)

// GetSystemPrompt sets the role of the model for complaint analysis.
func GetSystemPrompt() string {
	return `You are an expert legal and administrative assistant for a government agency. Your task is to analyze citizen complaints with objectivity and precision. Your response must be in JSON format and adhere to the provided schema. Focus on identifying the core issues, mapping them to the correct department, evaluating them against standard government regulations, and proposing clear, actionable solutions for the handling official.

Requirements:
- Output must be a single JSON object, no markdown, no code fences.
- "summary" and "solutions" are arrays of strings; "department" and "analysis" are strings.
- All four fields are required.`
}

// GetUserPrompt wraps the complaint in double quotes. The text itself is passed through untouched.
func GetUserPrompt(complaintText string) string {
	return fmt.Sprintf("Please analyze the following citizen complaint, which may be in English or Malayalam: \"%s\"", complaintText)
}

// ExtractionInstruction accompanies an uploaded scan.
const ExtractionInstruction = "Extract all text from the attached file, which contains a citizen's complaint letter. The file could be an image or a PDF. The text may be in English or Malayalam. Transcribe the text accurately, preserving paragraphs and original formatting as much as possible."

package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// transcribePrompt is the shared prompt used by all LLM providers for reading packaging text
const transcribePrompt = `You are reading the packaging of a pharmacy product. Transcribe ALL text visible in the image exactly as printed.

Pay special attention to:
1. **Lot / batch codes**: usually introduced by "LOT", "LOTE", "COD", "REF" or printed near the barcode.
2. **Expiration dates**: usually introduced by "EXP", "VTO", "VENCE", "CAD" or "V", and printed as numbers (04/2026, 15-04-2026, 12 27) or with a Spanish month abbreviation (ABR 2026, NOV.24).

Return ONLY valid JSON in this exact format:
{
  "text": "first line\nsecond line"
}

Important:
- Copy characters exactly; do not correct, translate, reformat or reorder dates
- Keep one printed line per line of output, separated by \n
- Do not add explanations or any text that is not printed on the package
- If there is no readable text, use an empty string
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

type transcript struct {
	Text string `json:"text"`
}

// parseTranscriptJSON parses the JSON response of an LLM provider
func parseTranscriptJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var data transcript
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return "", fmt.Errorf("unmarshaling json: %w", err)
	}

	return cleanLines(data.Text), nil
}

// cleanLines trims every line and drops blank ones
func cleanLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

package recommend

import (
	"encoding/json"
	"regexp"
	"strings"

	"wellbeing-insights-go/internal/types"
)

var (
	ctrlCharRe      = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z0-9_]+)\s*:`)
)

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

// Repair turns free-form model output into a RecommendationOutput when it
// can, applying progressively aggressive cleanup passes. It never fails:
// text no pass can rescue comes back tagged with the raw input and the
// first decode error. Salvage passes (balanced-object extraction, bare-key
// quoting) must recover actual content; an empty object salvaged out of
// prose stays Unparsed so the raw text is not silently dropped.
func Repair(raw string) types.RecommendationResult {
	text := stripFences(raw)

	out, firstErr := decode(text)
	if firstErr == nil {
		return types.RecommendationResult{Parsed: out}
	}

	cleaned := cleanText(text)
	if out, err := decode(cleaned); err == nil {
		return types.RecommendationResult{Parsed: out}
	}

	if inner := balancedObject(cleaned); inner != "" {
		if out, err := decode(inner); err == nil && hasContent(out) {
			return types.RecommendationResult{Parsed: out}
		}
		quoted := bareKeyRe.ReplaceAllString(inner, `$1"$2":`)
		if out, err := decode(quoted); err == nil && hasContent(out) {
			return types.RecommendationResult{Parsed: out}
		}
	}

	return types.RecommendationResult{
		RawText: raw,
		Reason:  "failed to parse recommendations JSON: " + firstErr.Error(),
	}
}

func decode(s string) (*types.RecommendationOutput, error) {
	var out types.RecommendationOutput
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func hasContent(out *types.RecommendationOutput) bool {
	return len(out.PriorityActions) > 0 || len(out.RecommendedEvents) > 0 ||
		len(out.LongTermStrategies) > 0 || len(out.MetricsToTrack) > 0
}

// stripFences removes the markdown code fences models like to wrap JSON in.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, fence := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, fence, "")
	}
	return strings.TrimSpace(s)
}

// cleanText applies the cheap repairs: control characters, smart quotes and
// trailing commas cover most of what small local models get wrong.
func cleanText(s string) string {
	s = ctrlCharRe.ReplaceAllString(s, "")
	s = smartQuotes.Replace(s)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return s
}

// balancedObject returns the first balanced {...} block in s, or "".
func balancedObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}

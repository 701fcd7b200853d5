package advisor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
)

const systemPrompt = "You are a food waste management expert advising canteen managers. Answer in plain text without markdown."

// lines this short are list debris rather than tips
const minInsightRunes = 10

var listMarker = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s*`)

func buildSuggestionPrompt(est prediction.Estimation, input prediction.NormalizedInput) string {
	var b strings.Builder
	b.WriteString("Provide a concise, actionable suggestion for a canteen with the following situation:\n")
	fmt.Fprintf(&b, "- Expected attendance: %d people\n", input.Attendance)
	fmt.Fprintf(&b, "- Menu type: %s\n", input.MenuType.Label())
	fmt.Fprintf(&b, "- Food quantity prepared: %s kg\n", formatQuantity(input.FoodQuantity))
	fmt.Fprintf(&b, "- Predicted waste level: %s\n", strings.ToUpper(string(est.Level)))
	fmt.Fprintf(&b, "- Estimated waste: %s kg (%s%%)\n", est.WasteKg.StringFixed(2), est.WastePercentage.StringFixed(1))
	fmt.Fprintf(&b, "- Expected consumption: %s kg\n", est.ExpectedConsumption.StringFixed(1))
	fmt.Fprintf(&b, "- Recommended quantity: %s kg\n", prediction.RecommendedQuantity(input.Attendance).StringFixed(1))
	b.WriteString("\nGive 2-3 sentences of practical advice to reduce food waste. Be specific and actionable.")
	return b.String()
}

func buildInsightsPrompt(est prediction.Estimation, input prediction.NormalizedInput) string {
	return fmt.Sprintf(
		"Provide 2-3 quick tips (one sentence each) for reducing food waste in a canteen serving %s food to %d people, "+
			"with a %s waste level predicted. Format the answer as a simple numbered list.",
		strings.ToLower(input.MenuType.Label()), input.Attendance, est.Level,
	)
}

// ParseInsights turns a list-shaped reply into individual tips.
func ParseInsights(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	tips := make([]string, 0, 3)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if utf8.RuneCountInString(line) <= minInsightRunes {
			continue
		}
		tips = append(tips, line)
	}
	return tips
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

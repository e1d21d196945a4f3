package helpers

import (
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func EscapeMarkdownV2(text string) string {
	charactersToEscape := []string{".", "-", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "=", "|", "{", "}", "!"}

	for _, char := range charactersToEscape {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

// FormatPriceFixed renders a price with four decimal places, thousand
// separated and escaped for MarkdownV2.
func FormatPriceFixed(price float64) string {
	p := message.NewPrinter(language.English)
	return EscapeMarkdownV2(p.Sprintf("%.4f", price))
}

// FormatMarketCapUS renders a valuation figure with exactly two decimal
// places and a thousand separator, escaped for MarkdownV2.
func FormatMarketCapUS(value float64) string {
	return EscapeMarkdownV2(humanize.FormatFloat("#,###.##", value))
}

package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdownV2(t *testing.T) {
	require.Equal(t, "abc12345", EscapeMarkdownV2("abc12345"))
	require.Equal(t, "5D27E\\.\\.\\.pump", EscapeMarkdownV2("5D27E...pump"))
	require.Equal(t, "a\\_b\\-c\\!", EscapeMarkdownV2("a_b-c!"))
}

func TestFormatPriceFixed(t *testing.T) {
	require.Equal(t, "0\\.0042", FormatPriceFixed(0.0042))
	require.Equal(t, "2\\.1000", FormatPriceFixed(2.1))
	require.Equal(t, "1,234\\.5000", FormatPriceFixed(1234.5))
}

func TestFormatMarketCapUS(t *testing.T) {
	require.Equal(t, "420,000\\.00", FormatMarketCapUS(420000))
	require.Equal(t, "1,234,567\\.89", FormatMarketCapUS(1234567.89))
}

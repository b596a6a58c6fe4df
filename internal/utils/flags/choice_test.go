package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsageHighlightsDefault(t *testing.T) {
	testCases := []struct {
		name          string
		defaultChoice string
		choices       []string
		description   string
		expected      string
	}{
		{
			name:          "backend_default_first",
			defaultChoice: "cli",
			choices:       []string{"cli", "native"},
			description:   "Branch listing backend.",
			expected:      "`<CLI|native>` Branch listing backend.",
		},
		{
			name:          "log_format_default_last",
			defaultChoice: "console",
			choices:       []string{"structured", "console"},
			description:   "Log encoding.",
			expected:      "`<structured|CONSOLE>` Log encoding.",
		},
		{
			name:          "no_description",
			defaultChoice: "native",
			choices:       []string{"cli", "native"},
			expected:      "`<cli|NATIVE>`",
		},
		{
			name:          "duplicates_and_padding_collapse",
			defaultChoice: " cli ",
			choices:       []string{" cli", "cli ", "native", "", "native"},
			description:   "Backend.",
			expected:      "`<CLI|native>` Backend.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestNormalizeChoiceAcceptsKnownValuesOnly(t *testing.T) {
	backends := []string{"cli", "native"}

	normalized, normalizeError := NormalizeChoice(" Native ", backends)
	require.NoError(t, normalizeError)
	require.Equal(t, "native", normalized)

	_, normalizeError = NormalizeChoice("libgit2", backends)
	require.EqualError(t, normalizeError, `invalid value "libgit2"; expected one of <cli|native>`)

	_, normalizeError = NormalizeChoice("", backends)
	require.Error(t, normalizeError)
}

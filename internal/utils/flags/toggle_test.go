package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newToggleCommand(target *bool, shorthand string, defaultValue bool) *cobra.Command {
	command := &cobra.Command{}
	AddToggleFlag(command.Flags(), target, "fetch", shorthand, defaultValue, "Shallow-fetch commits before reading dates")
	return command
}

func TestAddToggleFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		defaultValue    bool
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false},
		{name: "DefaultTrue", arguments: []string{}, defaultValue: true, expectedValue: true},
		{name: "ImplicitTrue", arguments: []string{"--fetch"}, expectedValue: true, expectedChanged: true},
		{name: "SeparateYes", arguments: []string{"--fetch", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "SeparateNoUppercase", arguments: []string{"--fetch", "NO"}, defaultValue: true, expectedValue: false, expectedChanged: true},
		{name: "InlineOff", arguments: []string{"--fetch=off"}, defaultValue: true, expectedValue: false, expectedChanged: true},
		{name: "ShorthandNo", arguments: []string{"-f", "no"}, defaultValue: true, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var toggleValue bool
			command := newToggleCommand(&toggleValue, "f", testCase.defaultValue)

			require.NoError(t, command.ParseFlags(NormalizeToggleArguments(testCase.arguments)))
			require.Equal(t, testCase.expectedValue, toggleValue)

			flag := command.Flags().Lookup("fetch")
			require.NotNil(t, flag)
			require.Equal(t, testCase.expectedChanged, flag.Changed)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(t *testing.T) {
	var toggleValue bool
	command := newToggleCommand(&toggleValue, "", false)

	require.Error(t, command.ParseFlags(NormalizeToggleArguments([]string{"--fetch=maybe"})))
	require.False(t, toggleValue)
	require.False(t, command.Flags().Lookup("fetch").Changed)
}

func TestAddToggleFlagDescribesDefault(t *testing.T) {
	command := newToggleCommand(nil, "", true)
	require.Equal(t, "`<YES|no>` Shallow-fetch commits before reading dates", command.Flags().Lookup("fetch").Usage)
}

func TestNormalizeToggleArgumentsLeavesOtherArgumentsAlone(t *testing.T) {
	newToggleCommand(nil, "f", false)

	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{name: "Empty", arguments: nil, expected: nil},
		{name: "ToggleBeforeFlag", arguments: []string{"--fetch", "--remote", "origin"}, expected: []string{"--fetch", "--remote", "origin"}},
		{name: "ToggleBeforeSubcommand", arguments: []string{"--fetch", "analyze"}, expected: []string{"--fetch", "analyze"}},
		{name: "UnregisteredFlag", arguments: []string{"--remote", "no"}, expected: []string{"--remote", "no"}},
		{name: "AfterTerminator", arguments: []string{"analyze", "--", "--fetch", "no"}, expected: []string{"analyze", "--", "--fetch", "no"}},
		{name: "Joined", arguments: []string{"analyze", "--fetch", "off", "--batch-size", "5"}, expected: []string{"analyze", "--fetch=off", "--batch-size", "5"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, NormalizeToggleArguments(testCase.arguments))
		})
	}
}

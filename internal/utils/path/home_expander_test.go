package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/stale-branches/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/tester"

func TestHomeExpanderExpand(t *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "TildeOnly", input: "~", expected: testHomeDirectoryConstant},
		{name: "TildeWithPath", input: "~/reports", expected: filepath.Join(testHomeDirectoryConstant, "reports")},
		{name: "AbsolutePath", input: "/var/tmp", expected: "/var/tmp"},
		{name: "RelativePath", input: "reports", expected: "reports"},
		{name: "Empty", input: "", expected: ""},
		{name: "OtherUser", input: "~alice/reports", expected: "~alice/reports"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderLeavesTildeWhenHomeUnavailable(t *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})
	require.Equal(t, "~/reports", expander.Expand("~/reports"))
}

func TestHomeExpanderResolve(t *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	require.Equal(t, ".", expander.Resolve("  ", "."))
	require.Equal(t, filepath.Join(testHomeDirectoryConstant, "out"), expander.Resolve("~/out/", "."))
	require.Equal(t, "reports", expander.Resolve("./reports", "."))
}

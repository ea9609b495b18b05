package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/lasso/internal/utils/path"
)

func TestHomeExpander(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return testHomeDirectoryConstant, nil })

	testCases := []struct {
		name      string
		transform func(string) string
		input     string
		expected  string
	}{
		{name: "expand_shortcut", transform: expander.Expand, input: "~", expected: testHomeDirectoryConstant},
		{name: "expand_nested", transform: expander.Expand, input: "~/src", expected: filepath.Join(testHomeDirectoryConstant, "src")},
		{name: "expand_other_user_untouched", transform: expander.Expand, input: "~bob/src", expected: "~bob/src"},
		{name: "expand_plain_path_untouched", transform: expander.Expand, input: "/srv/api", expected: "/srv/api"},
		{name: "shorten_home", transform: expander.Shorten, input: "/home/alice", expected: "~"},
		{name: "shorten_nested", transform: expander.Shorten, input: "/home/alice/src/api", expected: filepath.Join("~", "src", "api")},
		{name: "shorten_sibling_prefix_untouched", transform: expander.Shorten, input: "/home/alicebob/src", expected: "/home/alicebob/src"},
		{name: "shorten_outside_home_untouched", transform: expander.Shorten, input: "/srv/api", expected: "/srv/api"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.transform(testCase.input))
		})
	}
}

func TestHomeExpanderWithoutHomeDirectory(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "", errors.New("no home") })

	require.Equal(testInstance, "~/src", expander.Expand("~/src"))
	require.Equal(testInstance, "/home/alice/src", expander.Shorten("/home/alice/src"))

	rootHome := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "/", nil })
	require.Equal(testInstance, "/srv/api", rootHome.Shorten("/srv/api"))
}

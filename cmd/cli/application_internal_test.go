package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplicationRootCommandRunsStatus(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	registryPath := filepath.Join(configurationDirectory, "registry.yaml")
	testInstance.Setenv(configurationSearchPathEnvironmentName, configurationDirectory)
	testInstance.Setenv("LASSO_REGISTRY_PATH", registryPath)

	application := NewApplication()
	var outputBuffer bytes.Buffer
	application.rootCommand.SetOut(&outputBuffer)
	application.rootCommand.SetErr(io.Discard)
	application.rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, "No repositories registered: use the 'register' command\n", outputBuffer.String())
	require.Equal(testInstance, registryPath, application.configuration.Registry.Path)
}

func TestApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()
	require.NoError(testInstance, application.commandBuildError)

	registeredNames := make(map[string]struct{})
	for _, command := range application.rootCommand.Commands() {
		registeredNames[command.Name()] = struct{}{}
	}
	for _, expectedName := range []string{"status", "register", "unregister", "fetch", "pull", "git", "exec", "context"} {
		require.Contains(testInstance, registeredNames, expectedName)
	}
}

func TestApplicationVersionFlagPrintsVersionAndExits(testInstance *testing.T) {
	application := NewApplication()
	application.versionResolver = func(context.Context) string {
		return "v1.2.0"
	}

	exitCode := -1
	sentinel := "version-exit"
	application.exitFunction = func(code int) {
		exitCode = code
		panic(sentinel)
	}

	var outputBuffer bytes.Buffer
	application.rootCommand.SetOut(&outputBuffer)
	application.rootCommand.SetArgs([]string{"--version"})

	require.PanicsWithValue(testInstance, sentinel, func() {
		_ = application.Execute()
	})
	require.Equal(testInstance, "lasso version: v1.2.0\n", outputBuffer.String())
	require.Equal(testInstance, 0, exitCode)
}

func TestConfigurationSearchPaths(testInstance *testing.T) {
	testInstance.Setenv(configurationSearchPathEnvironmentName, "")
	require.Equal(testInstance, []string{".", filepath.Join("/home/user/.config", "lasso")}, configurationSearchPaths("/home/user/.config"))
	require.Equal(testInstance, []string{"."}, configurationSearchPaths(""))

	testInstance.Setenv(configurationSearchPathEnvironmentName, "/etc/lasso"+string(os.PathListSeparator)+"/opt/lasso")
	require.Equal(testInstance, []string{"/etc/lasso", "/opt/lasso"}, configurationSearchPaths("/home/user/.config"))
}

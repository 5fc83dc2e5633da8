package cmd //nolint:testpackage // tests unexported wiring helpers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/rewritebot/config"
)

func TestRootCommandArgs(t *testing.T) {
	t.Run("should reject fewer than five positional arguments", func(t *testing.T) {
		// given
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs([]string{"token", "com.acme", "widgets-lib"})

		// when
		err := rootCmd.Execute()

		// then
		require.Error(t, err)
		assert.Contains(t, out.String(), "Usage")
	})
}

func TestBuildService(t *testing.T) {
	t.Parallel()

	t.Run("should wire a service for the github provider", func(t *testing.T) {
		t.Parallel()

		// given
		settings := config.Default()

		// when
		service, err := buildService("token", settings)

		// then
		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("should wire a service for the gitlab provider", func(t *testing.T) {
		t.Parallel()

		// given
		settings := config.Default()
		settings.Provider = "gitlab"

		// when
		service, err := buildService("token", settings)

		// then
		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("should fail for an unregistered provider", func(t *testing.T) {
		t.Parallel()

		// given
		settings := config.Default()
		settings.Provider = "bitbucket"

		// when
		_, err := buildService("token", settings)

		// then
		require.Error(t, err)
	})
}

func TestBuildProviderRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should register both hosting platforms", func(t *testing.T) {
		t.Parallel()

		// when
		registry := buildProviderRegistry()

		// then
		assert.ElementsMatch(t, []string{"github", "gitlab"}, registry.Names())
	})
}

package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"data-dir", "config-dir", "metrics-file", "verbose", "json-logs"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_InitializerBuildsAndClosesServices(t *testing.T) {
	_, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	defer SetInitializer(nil)

	var got Config
	closed := 0
	SetInitializer(func(cfg Config) (*Services, error) {
		got = cfg
		return &Services{
			Candidates: &mockCandidateService{},
			Close: func() error {
				closed++
				return nil
			},
		}, nil
	})

	out, err := runCommand("--data-dir", "/tmp/wh", "reindex")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/wh", got.DataDir)
	assert.Contains(t, out, "Reindexed 2 candidate(s)")
	assert.Equal(t, 1, closed)

	Close()
	assert.Equal(t, 1, closed, "teardown already released the services")
}

func TestRootCmd_InitializerError(t *testing.T) {
	_, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	defer SetInitializer(nil)

	boom := errors.New("open warehouse: disk full")
	SetInitializer(func(Config) (*Services, error) { return nil, boom })

	_, err := runCommand("stats")

	assert.ErrorIs(t, err, boom)
}

func TestRootCmd_VersionSkipsInitializer(t *testing.T) {
	_, cleanup := setupTestServicesWithMocks()
	defer cleanup()
	defer SetInitializer(nil)

	called := false
	SetInitializer(func(Config) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	_, err := runCommand("version")

	require.NoError(t, err)
	assert.False(t, called)
}

func TestClose_AfterFailedCommand(t *testing.T) {
	_, cleanup := setupTestServicesWithMocks()
	defer cleanup()

	closed := false
	closeServices = func() error {
		closed = true
		return errors.New("already closed")
	}

	Close()

	assert.True(t, closed)
	assert.Nil(t, closeServices)
}

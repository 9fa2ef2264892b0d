package server

import (
	"testing"

	"github.com/blogsphere/authsession/internal/server/config"
	"github.com/blogsphere/authsession/internal/server/shared/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	app, err := NewApp(cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, app.config)
	assert.NotNil(t, app.userService)
	assert.NotNil(t, app.logger)
	assert.IsType(t, db.InMemoryRepositoryManager{}, app.repos, "no DSN keeps state in memory")

	families, err := app.registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

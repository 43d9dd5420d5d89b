package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"migrations/000001_init.down.sql",
		"migrations/000001_init.up.sql",
	}, files)

	up, err := fs.ReadFile(migrations, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"categories", "products", "promotions", "users", "addresses", "orders"} {
		assert.True(t, strings.Contains(string(up), "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open("postgres://nobody@127.0.0.1:1/none?connect_timeout=1")
	assert.Error(t, err)
}

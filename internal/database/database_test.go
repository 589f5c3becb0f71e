package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDatabaseSkipsNonPostgres(t *testing.T) {
	assert.NoError(t, ensureDatabase("file::memory:"))
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/shop", redactDSN("postgres://app:secret@db:5432/shop"))
}

func TestCloseNil(t *testing.T) {
	require.NoError(t, Close(nil))
}

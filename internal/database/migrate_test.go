package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	script := `
-- first table
CREATE TABLE a (id INT);

CREATE TABLE b (id INT);
   ;
`
	got := SplitStatements(script)
	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE a (id INT)", got[0])
	assert.Equal(t, "CREATE TABLE b (id INT)", got[1])
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	b, err := migrations.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)

	stmts := SplitStatements(string(b))
	assert.Len(t, stmts, 8)
	for _, s := range stmts {
		assert.Contains(t, s, "CREATE TABLE IF NOT EXISTS")
	}
}

package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `
-- leading comment
CREATE TABLE a (x Int64);

CREATE TABLE b (y String DEFAULT 'x;y') -- trailing; comment
ENGINE = MergeTree() ORDER BY y;
SELECT 'it''s'`

	stmts, err := splitStatements(sql)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (x Int64)", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String DEFAULT 'x;y') \nENGINE = MergeTree() ORDER BY y", stmts[1])
	assert.Equal(t, "SELECT 'it''s'", stmts[2])
}

func TestSplitStatements_Unterminated(t *testing.T) {
	_, err := splitStatements("SELECT 'open;")
	assert.Error(t, err)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/forge")
	require.NoError(t, err)
	assert.Equal(t, "forge", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestScripts_OrderAndSkipEmpty(t *testing.T) {
	fsys := fstest.MapFS{
		"pg/002_b.sql":  {Data: []byte("SELECT 2;")},
		"pg/001_a.sql":  {Data: []byte("SELECT 1;")},
		"pg/003_c.sql":  {Data: []byte("  \n")},
		"pg/README.txt": {Data: []byte("ignored")},
	}
	list, err := scripts(fsys, "pg")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "001_a.sql", list[0].name)
	assert.Equal(t, "002_b.sql", list[1].name)
}

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := scripts(PostgresFS, "postgres")
	require.NoError(t, err)
	assert.Len(t, pg, 2)

	ch, err := scripts(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)
	for _, s := range ch {
		stmts, err := splitStatements(s.body)
		require.NoError(t, err, s.name)
		assert.NotEmpty(t, stmts, s.name)
	}
}

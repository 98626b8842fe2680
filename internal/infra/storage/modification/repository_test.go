package modification

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Репозиторий и миграция перечисляют колонки независимо друг от друга.
// Тест ловит дрейф: каждая колонка, которую репозиторий пишет или читает,
// обязана быть объявлена в DDL modification_records.
func TestRepository_ColumnsMatchMigration(t *testing.T) {
	raw, err := os.ReadFile("../../../../migrations/0001_init.sql")
	require.NoError(t, err)

	sql := string(raw)
	start := strings.Index(sql, "CREATE TABLE IF NOT EXISTS modification_records")
	require.NotEqual(t, -1, start, "migration must declare modification_records")

	end := strings.Index(sql[start:], ");")
	require.NotEqual(t, -1, end)
	ddl := sql[start : start+end]

	columns := []string{
		"id",
		"appointment_id",
		"modification_type",
		"old_date",
		"old_start_time",
		"old_duration_minutes",
		"new_date",
		"new_start_time",
		"new_duration_minutes",
		"old_status",
		"new_status",
		"reason",
		"actor_id",
		"created_at",
	}

	for _, column := range columns {
		// Колонка объявляется в начале строки DDL, за именем идет тип
		declared := regexp.MustCompile(`(?m)^\s*` + column + `\s+\w`)
		assert.Regexp(t, declared, ddl, "column %q is missing from modification_records DDL", column)
	}
}

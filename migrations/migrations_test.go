package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFS_HasGooseMigrations(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		b, err := fs.ReadFile(FS, f)
		require.NoError(t, err)
		require.Contains(t, string(b), "-- +goose Up", f)
		require.Contains(t, string(b), "-- +goose Down", f)
	}
}

func TestInit_AuditLogIsAppendOnly(t *testing.T) {
	t.Parallel()

	b, err := fs.ReadFile(FS, "00001_init.sql")
	require.NoError(t, err)
	sql := string(b)
	require.True(t, strings.Contains(sql, "BEFORE UPDATE OR DELETE ON audit_logs"))
	require.True(t, strings.Contains(sql, "UNIQUE (applicant_id, exam_session_id)"))
}

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stellar/internal/db"
	"stellar/internal/models"
)

func setupCLI(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	dbDriver = db.DriverSQLite
	dbURL = filepath.Join(t.TempDir(), "stellar.db")
	t.Setenv("ENCRYPTION_KEY", "")
}

func newCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func TestMigrateCmd(t *testing.T) {
	setupCLI(t)
	cmd, out := newCmd()
	require.NoError(t, migrateCmd.RunE(cmd, nil))
	assert.Contains(t, out.String(), "migrations applied")
}

func TestSeedUserCmd(t *testing.T) {
	setupCLI(t)
	seedEmail, seedUsername, seedPassword = "Dev@Example.com", "dev", "devpass123"
	t.Cleanup(func() { seedEmail, seedUsername, seedPassword = "", "", "" })

	cmd, out := newCmd()
	require.NoError(t, runSeedUser(cmd, nil))
	assert.Contains(t, out.String(), "created user dev@example.com")

	st, closeFn, err := openStore()
	require.NoError(t, err)
	u, err := st.GetUserByEmail(context.Background(), "dev@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsEmailVerified)
	assert.True(t, u.IsActive)
	closeFn()

	// running it twice is harmless
	cmd, out = newCmd()
	require.NoError(t, runSeedUser(cmd, nil))
	assert.Contains(t, out.String(), "already exists")
}

func TestSeedUserCmd_MissingFlags(t *testing.T) {
	setupCLI(t)
	seedEmail, seedUsername, seedPassword = "x@example.com", "", ""
	t.Cleanup(func() { seedEmail = "" })
	cmd, _ := newCmd()
	assert.Error(t, runSeedUser(cmd, nil))
}

func TestDeleteUsersCmd(t *testing.T) {
	setupCLI(t)
	st, closeFn, err := openStore()
	require.NoError(t, err)
	ctx := context.Background()
	for _, e := range []string{"test1@example.com", "test2@example.com", "keep@example.com"} {
		require.NoError(t, st.CreateUser(ctx, &models.User{Username: e[:5], Email: e, PasswordHash: "x", IsActive: true}))
	}
	closeFn()

	emailLike = "%"
	cmd, _ := newCmd()
	assert.Error(t, runDeleteUsers(cmd, nil), "pure wildcard rejected")

	emailLike = "test%@example.com"
	t.Cleanup(func() { emailLike = "" })
	cmd, out := newCmd()
	require.NoError(t, runDeleteUsers(cmd, nil))
	assert.Contains(t, out.String(), "deleted 2 user(s)")

	st, closeFn, err = openStore()
	require.NoError(t, err)
	defer closeFn()
	_, err = st.GetUserByEmail(ctx, "keep@example.com")
	assert.NoError(t, err)
}

func TestRecordsCmd(t *testing.T) {
	setupCLI(t)
	st, closeFn, err := openStore()
	require.NoError(t, err)
	ctx := context.Background()
	u := &models.User{Username: "amy", Email: "amy@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, st.CreateUser(ctx, u))
	color := "#AABBCC"
	require.NoError(t, st.CreateRecord(ctx, &models.Record{UserID: u.ID, Type: models.RecordMood, Content: "sunny day", ColorHex: &color, CreatedAt: time.Now()}))
	require.NoError(t, st.CreateRecord(ctx, &models.Record{UserID: u.ID, Type: models.RecordSpark, Content: "idea", CreatedAt: time.Now()}))
	closeFn()

	recordsEmail, recordsLimit = "amy@example.com", 10
	t.Cleanup(func() { recordsEmail = "" })
	cmd, out := newCmd()
	require.NoError(t, runRecords(cmd, nil))
	s := out.String()
	assert.Contains(t, s, "total    2")
	assert.Contains(t, s, "mood     1")
	assert.Contains(t, s, "thought  0")
	assert.Contains(t, s, "sunny day")
	assert.Contains(t, s, "#AABBCC")

	recordsEmail = "nobody@example.com"
	cmd, _ = newCmd()
	assert.Error(t, runRecords(cmd, nil))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "星球星球...", preview("星球星球星球", 4))
	assert.Equal(t, "a b", preview("a\nb", 10))
}

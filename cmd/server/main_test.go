package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	t.Setenv("HOTEL_SERVER_LOG_LEVEL", "error")
	t.Setenv("HOTEL_DATABASE_DRIVER", "sqlite")
	t.Setenv("HOTEL_DATABASE_URL", filepath.Join(t.TempDir(), "cli.sqlite"))
	t.Setenv("HOTEL_AUTH_JWT_SECRET", "cli-test-secret-that-is-32-chars-long")
	t.Setenv("HOTEL_AUTH_BCRYPT_COST", "4")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "migrate", "sideways")
	assert.Error(t, err)

	_, err = runCLI(t, "migrate")
	assert.Error(t, err)
}

func TestUserCreate(t *testing.T) {
	setTestEnv(t)

	_, err := runCLI(t, "migrate", "up")
	require.NoError(t, err)

	out, err := runCLI(t, "user", "create",
		"--email", "root@example.com",
		"--password", "P@ssword1",
		"--role", "Administrator")
	require.NoError(t, err)
	assert.Contains(t, out, "created root@example.com")
	assert.Contains(t, out, "Administrator")

	_, err = runCLI(t, "user", "create", "--email", "root@example.com", "--password", "P@ssword1")
	assert.Error(t, err, "user names are unique")

	_, err = runCLI(t, "user", "create", "--email", "x@example.com", "--password", "P@ssword1", "--role", "Owner")
	assert.ErrorContains(t, err, `unknown role "Owner"`)
}

func TestUserCreateRequiresFlags(t *testing.T) {
	setTestEnv(t)

	_, err := runCLI(t, "user", "create", "--email", "root@example.com")
	assert.Error(t, err)
}

func TestLoadAppConfigRejectsMissingSecret(t *testing.T) {
	setTestEnv(t)
	t.Setenv("HOTEL_AUTH_JWT_SECRET", "")

	_, _, err := loadAppConfig("")
	assert.Error(t, err)
}

package cli

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas-be/internal/service"
)

func findCmd(t *testing.T, root *cobra.Command, args ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find(args)
	require.NoError(t, err)
	return cmd
}

func TestRootCmdTree(t *testing.T) {
	root := NewRootCmd()

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	for _, path := range [][]string{{"serve"}, {"migrate"}, {"seed"}, {"report"}, {"user", "activate"}, {"user", "deactivate"}} {
		cmd := findCmd(t, root, path...)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	report := findCmd(t, root, "report")
	assert.NotNil(t, report.Flags().Lookup("user"))
	assert.NotNil(t, report.Flags().Lookup("month"))
	assert.NotNil(t, findCmd(t, root, "serve").Flags().Lookup("addr"))
}

func TestReportRequiresUser(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"report"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"user" not set`)
}

func TestUserCmdRequiresUsername(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"user", "activate"})

	assert.Error(t, root.Execute())
}

func TestReportOptionsResolve(t *testing.T) {
	current := service.Month{Year: 2025, Month: time.March}

	m, err := reportOptions{}.resolve(current)
	require.NoError(t, err)
	assert.Equal(t, current, m)

	m, err = reportOptions{year: 2024, month: 7}.resolve(current)
	require.NoError(t, err)
	assert.Equal(t, service.Month{Year: 2024, Month: time.July}, m)

	_, err = reportOptions{month: 13}.resolve(current)
	assert.Error(t, err)
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := loadConfig(&rootOptions{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/finanzas")
	cfg, err := loadConfig(&rootOptions{logLevel: "debug"}, false)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = loadConfig(&rootOptions{}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveMboxPath_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveMboxPath(path, "/var/mail/me"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "mbox: /var/mail/me")
	require.Contains(t, content, "# Body highlighting")

	rules, err := LoadRuleSet(path)
	require.NoError(t, err)
	require.Equal(t, 2, rules.Len(), "highlights survive the rewrite")
}

func TestSaveMboxPath_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mbox: /old\nwatch: false\n"), 0o600))

	require.NoError(t, SaveMboxPath(path, "/new"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "mbox: /new")
	require.NotContains(t, string(data), "/old")
	require.Contains(t, string(data), "watch: false")
}

func TestSaveMboxPath_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	require.NoError(t, SaveMboxPath(path, "/var/mail/x"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "mbox: /var/mail/x\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveMboxPath_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	require.Error(t, SaveMboxPath(path, "/x"))
}

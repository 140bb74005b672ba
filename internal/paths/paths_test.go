package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataDir_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	require.Equal(t, filepath.Join("/xdg", "smbox"), DataDir())
	require.Equal(t, filepath.Join("/xdg", "smbox", "trash.db"), TrashDB())
	require.Equal(t, filepath.Join("/xdg", "smbox", "debug.log"), LogFile())
}

func TestDataDir_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", home)
	require.Equal(t, filepath.Join(home, ".local", "share", "smbox"), DataDir())
	require.Equal(t, filepath.Join(home, ".config", "smbox", "config.yaml"), UserConfig())
}

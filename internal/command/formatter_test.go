package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatLiteralCommands(t *testing.T) {
	literals := []string{
		"deviceinfo", "getsms", "getcalllogs", "list_app", "get_location",
		"takefrontpic", "takebackpic", "flashon", "flashoff", "notifikasi",
		"gallery", "screen_recorder", "filemanager", "shell",
	}
	for _, name := range literals {
		require.Equal(t, name, Format(name, nil))
	}
}

func TestFormatParameterized(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"run", map[string]string{"package": "com.example"}, "run com.example"},
		{"open", map[string]string{"url": "https://example.com"}, "open https://example.com"},
		{"toast", map[string]string{"action": "show", "text": "hi"}, "toast show hi"},
		{"shell_cd", map[string]string{"path": "/sdcard"}, "cd /sdcard"},
		{"shell_cmd", map[string]string{"cmd": "cat /proc/version"}, "cat /proc/version"},
		{"shell_ls", nil, "ls"},
		{"shell_exit", nil, "exit_shell"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Format(tt.name, tt.params), "command %s", tt.name)
	}
}

func TestFormatUnknownCommandPassesThrough(t *testing.T) {
	// Forward compatibility: agent-side additions must not require a
	// formatter update.
	require.Equal(t, "future_command", Format("future_command", nil))
	require.Equal(t, "wipe_cache", Format("wipe_cache", map[string]string{"ignored": "x"}))
}

func TestFormatIsDeterministic(t *testing.T) {
	params := map[string]string{"package": "com.example"}
	first := Format("run", params)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Format("run", params))
	}
}

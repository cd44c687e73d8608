package scrollspy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grindlemire/go-scrollspy/internal/debug"
)

func TestFormatKV(t *testing.T) {
	type tc struct {
		msg  string
		args []any
		want string
	}

	tests := map[string]tc{
		"no args": {
			msg:  "tracking started",
			want: "tracking started",
		},
		"pairs": {
			msg:  "active region changed",
			args: []any{"region", "about", "area", 320},
			want: "active region changed region=about area=320",
		},
		"dangling key": {
			msg:  "observer ready",
			args: []any{"session", "s1", "orphan"},
			want: "observer ready session=s1 orphan",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatKV(tt.msg, tt.args))
		})
	}
}

func TestDebugLogger_WritesWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")

	var l debugLogger
	l.Info("dropped before init", "session", "s0")

	require.NoError(t, debug.Init(path))
	l.Warn("active region changed", "region", "about")
	require.NoError(t, debug.Close())
	l.Error("dropped after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WARN active region changed region=about")
	assert.NotContains(t, string(data), "dropped")
}

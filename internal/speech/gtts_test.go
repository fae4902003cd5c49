package speech

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub installs a fake gtts-cli that copies stdin to the -o path and
// records its arguments next to it.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "gtts-stub")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

const copyStdinStub = `#!/bin/sh
out=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
echo "$@" > "$out.args"
cat > "$out"
`

func TestGTTSEngine_SynthesizeToFile(t *testing.T) {
	engine, err := NewGTTSEngine(GTTSConfig{Command: writeStub(t, copyStdinStub)})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "answer.mp3")
	require.NoError(t, engine.SynthesizeToFile(context.Background(), "-- rest well", "en", false, out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "-- rest well", string(got))

	args, err := os.ReadFile(out + ".args")
	require.NoError(t, err)
	assert.Equal(t, "- -l en -o "+out+"\n", string(args))
}

func TestGTTSEngine_SlowFlagAndLanguage(t *testing.T) {
	engine, err := NewGTTSEngine(GTTSConfig{Command: writeStub(t, copyStdinStub)})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "answer.mp3")
	require.NoError(t, engine.SynthesizeToFile(context.Background(), "hola", "es", true, out))

	args, err := os.ReadFile(out + ".args")
	require.NoError(t, err)
	assert.Equal(t, "- -l es --slow -o "+out+"\n", string(args))
}

func TestGTTSEngine_CommandFailure(t *testing.T) {
	engine, err := NewGTTSEngine(GTTSConfig{Command: writeStub(t, "#!/bin/sh\necho 'no route to host' >&2\nexit 3\n")})
	require.NoError(t, err)

	err = engine.SynthesizeToFile(context.Background(), "hello", "en", false, filepath.Join(t.TempDir(), "a.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route to host")
}

func TestGTTSEngine_EmptyOutput(t *testing.T) {
	engine, err := NewGTTSEngine(GTTSConfig{Command: writeStub(t, "#!/bin/sh\nexit 0\n")})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(out, nil, 0o644))

	err = engine.SynthesizeToFile(context.Background(), "hello", "en", false, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestGTTSEngine_MissingBinary(t *testing.T) {
	engine, err := NewGTTSEngine(GTTSConfig{Command: filepath.Join(t.TempDir(), "does-not-exist")})
	require.NoError(t, err)

	err = engine.SynthesizeToFile(context.Background(), "hello", "en", false, filepath.Join(t.TempDir(), "a.mp3"))
	assert.Error(t, err)
}

func TestGTTSEngine_RejectsEmptyText(t *testing.T) {
	engine, err := NewGTTSEngine(GTTSConfig{})
	require.NoError(t, err)

	err = engine.SynthesizeToFile(context.Background(), " ", "en", false, "unused.mp3")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewGTTSEngine_ParsesCommand(t *testing.T) {
	engine, err := NewGTTSEngine(GTTSConfig{Command: `python3 -m "gtts.cli"`})
	require.NoError(t, err)
	assert.Equal(t, []string{"python3", "-m", "gtts.cli"}, engine.cmd)

	_, err = NewGTTSEngine(GTTSConfig{Command: `"unterminated`})
	assert.Error(t, err)
}

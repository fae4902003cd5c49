package playback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingRunner struct {
	calls   []string
	succeed string
}

func (r *recordingRunner) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	if name == r.succeed {
		return nil
	}
	return errors.New("exec: not found")
}

func TestLinuxPlayerTriesCandidatesInOrder(t *testing.T) {
	rr := &recordingRunner{succeed: "ffplay"}
	p, err := newPlayer("linux", rr.run, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, p.Play(context.Background(), "out.mp3"))
	assert.Equal(t, []string{
		"aplay out.mp3",
		"mpg123 out.mp3",
		"ffplay -nodisp -autoexit out.mp3",
	}, rr.calls)
}

func TestLinuxPlayerStopsAtFirstSuccess(t *testing.T) {
	rr := &recordingRunner{succeed: "aplay"}
	p, err := newPlayer("linux", rr.run, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, p.Play(context.Background(), "out.wav"))
	assert.Len(t, rr.calls, 1)
}

func TestPlayerReportsNoPlayer(t *testing.T) {
	rr := &recordingRunner{}
	p, err := newPlayer("linux", rr.run, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = p.Play(context.Background(), "out.mp3")
	assert.ErrorIs(t, err, ErrNoPlayer)
	assert.Len(t, rr.calls, 3)
}

func TestDarwinPlayer(t *testing.T) {
	rr := &recordingRunner{succeed: "afplay"}
	p, err := newPlayer("darwin", rr.run, nil)
	require.NoError(t, err)

	require.NoError(t, p.Play(context.Background(), "out.mp3"))
	assert.Equal(t, []string{"afplay out.mp3"}, rr.calls)
}

func TestWindowsPlayerChoosesByExtension(t *testing.T) {
	mp3 := windowsCommands("out.mp3")
	require.Len(t, mp3, 1)
	assert.Contains(t, mp3[0][2], "WMPlayer.OCX")

	wav := windowsCommands("out.wav")
	require.Len(t, wav, 1)
	assert.Contains(t, wav[0][2], `Media.SoundPlayer "out.wav"`)
}

func TestUnsupportedPlatform(t *testing.T) {
	_, err := NewPlayer("plan9", nil)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

package consult

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Vovarama1992/quickcare/internal/infra"
	"github.com/Vovarama1992/quickcare/internal/ports"
	"github.com/Vovarama1992/quickcare/internal/speech"
)

type fakeSTT struct {
	text string
	err  error
}

func (f *fakeSTT) Transcribe(context.Context, string) (string, error) { return f.text, f.err }

type fakeVision struct {
	reply     string
	err       error
	query     string
	imagePath string
	calls     int
}

func (f *fakeVision) Analyze(_ context.Context, query, imagePath string) (string, error) {
	f.calls++
	f.query, f.imagePath = query, imagePath
	return f.reply, f.err
}

type fakePrimary struct {
	audio []byte
	err   error
}

func (f *fakePrimary) Synthesize(context.Context, string) ([]byte, error) { return f.audio, f.err }

type fakeEngine struct{ err error }

func (f *fakeEngine) SynthesizeToFile(_ context.Context, text, _ string, _ bool, out string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("gtts:"+text), 0o644)
}

type fakeArtifacts struct {
	err  error
	path string
}

func (f *fakeArtifacts) ObjectKey(id, filename string) string { return id + "/" + filename }

func (f *fakeArtifacts) SaveAudio(_ context.Context, id, path string) (string, error) {
	f.path = path
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + id + "/" + filepath.Base(path), nil
}

type fakeNotifier struct{ details []string }

func (f *fakeNotifier) Notify(_ context.Context, _ error, details string) error {
	f.details = append(f.details, details)
	return nil
}

type harness struct {
	svc      *Service
	stt      *fakeSTT
	vision   *fakeVision
	primary  *fakePrimary
	engine   *fakeEngine
	repo     ports.ConsultationRepo
	notifier *fakeNotifier
	dir      string
}

func newHarness(t *testing.T, artifacts ports.ArtifactService) *harness {
	t.Helper()
	h := &harness{
		stt:      &fakeSTT{text: "I have a rash on my arm"},
		vision:   &fakeVision{reply: "With what I see, I think you have contact dermatitis."},
		primary:  &fakePrimary{audio: []byte("ID3primary")},
		engine:   &fakeEngine{},
		repo:     infra.NewMemoryConsultationRepo(10),
		notifier: &fakeNotifier{},
		dir:      t.TempDir(),
	}
	log := zaptest.NewLogger(t)
	synth := speech.NewSynthesizer(h.primary, h.engine, log)

	h.svc = NewService(
		Config{
			OutputDir: h.dir,
			Duration:  func(context.Context, string) (float64, error) { return 3.5, nil },
		},
		h.stt, h.vision, synth, artifacts, h.repo, h.notifier, log,
	)
	h.svc.newID = func() string { return "c0ffee" }
	return h
}

func TestProcess_WithImagePrimaryVoice(t *testing.T) {
	h := newHarness(t, nil)

	c, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm", ImagePath: "rash.jpg"})
	require.NoError(t, err)

	assert.Equal(t, "c0ffee", c.ID)
	assert.Equal(t, "I have a rash on my arm", c.Transcript)
	assert.Equal(t, h.vision.reply, c.Response)
	assert.Equal(t, "rash.jpg", h.vision.imagePath)
	assert.True(t, strings.HasPrefix(h.vision.query, "You have to act as a professional doctor"))
	assert.True(t, strings.HasSuffix(h.vision.query, " I have a rash on my arm"))

	assert.Equal(t, filepath.Join(h.dir, "doctor_response_c0ffee.mp3"), c.AudioPath)
	assert.Equal(t, "/audio/doctor_response_c0ffee.mp3", c.AudioURL)
	assert.Equal(t, "primary", c.Provider)
	assert.Equal(t, 3.5, c.DurationSeconds)

	got, err := os.ReadFile(c.AudioPath)
	require.NoError(t, err)
	assert.Equal(t, "ID3primary", string(got))

	history, err := h.svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].HasImage)
	require.NotNil(t, history[0].AudioURL)
	assert.Equal(t, c.AudioURL, *history[0].AudioURL)
}

func TestProcess_WithoutImage(t *testing.T) {
	h := newHarness(t, nil)

	c, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm"})
	require.NoError(t, err)

	assert.Equal(t, "No image provided for me to analyze", c.Response)
	assert.Zero(t, h.vision.calls)
	assert.True(t, c.HasAudio())
}

func TestProcess_FallbackVoice(t *testing.T) {
	h := newHarness(t, nil)
	h.primary.err = &speech.ProviderError{StatusCode: 503, Body: "busy"}

	c, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm", ImagePath: "x.png"})
	require.NoError(t, err)

	assert.Equal(t, "fallback", c.Provider)
	assert.Regexp(t, `^doctor_response_c0ffee_\d+\.mp3$`, filepath.Base(c.AudioPath))
	assert.FileExists(t, c.AudioPath)
	assert.Empty(t, h.notifier.details)
}

func TestProcess_SynthesisFailureKeepsText(t *testing.T) {
	h := newHarness(t, nil)
	h.primary.err = &speech.TransportError{Err: errors.New("dial tcp: connection refused")}
	h.engine.err = errors.New("gtts-cli: not found")

	c, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm", ImagePath: "x.png"})
	require.NoError(t, err)

	assert.Equal(t, h.vision.reply, c.Response)
	assert.False(t, c.HasAudio())
	assert.Empty(t, c.AudioURL)
	assert.Empty(t, c.Provider)
	require.Len(t, h.notifier.details, 1)
	assert.Contains(t, h.notifier.details[0], "speech synthesis failed")

	history, err := h.svc.History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].AudioURL)
}

func TestProcess_EmptyModelReplyHasNoAudio(t *testing.T) {
	h := newHarness(t, nil)
	h.vision.reply = ""

	c, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm", ImagePath: "x.png"})
	require.NoError(t, err)
	assert.False(t, c.HasAudio())
	assert.Empty(t, h.notifier.details)
}

func TestProcess_TranscriptionFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.stt.err = errors.New("whisper down")

	_, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcribe")
	assert.Len(t, h.notifier.details, 1)
}

func TestProcess_VisionFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.vision.err = errors.New("model not found")

	_, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm", ImagePath: "x.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze image")
}

func TestProcess_RequiresAudio(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.Process(context.Background(), Input{ImagePath: "x.png"})
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestProcess_UploadsArtifact(t *testing.T) {
	artifacts := &fakeArtifacts{}
	h := newHarness(t, artifacts)

	c, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/c0ffee/doctor_response_c0ffee.mp3", c.AudioURL)
	assert.Equal(t, c.AudioPath, artifacts.path)
}

func TestProcess_UploadFailureServesLocally(t *testing.T) {
	h := newHarness(t, &fakeArtifacts{err: errors.New("bucket gone")})

	c, err := h.svc.Process(context.Background(), Input{AudioPath: "q.webm"})
	require.NoError(t, err)
	assert.Equal(t, "/audio/doctor_response_c0ffee.mp3", c.AudioURL)
}

func TestSpeak(t *testing.T) {
	h := newHarness(t, nil)

	c, err := h.svc.Speak(context.Background(), "Drink water and rest")
	require.NoError(t, err)
	assert.Equal(t, "primary", c.Provider)
	assert.FileExists(t, c.AudioPath)

	_, err = h.svc.Speak(context.Background(), "")
	assert.ErrorIs(t, err, speech.ErrInvalidInput)

	h.primary.err = errors.New("down")
	h.engine.err = errors.New("also down")
	_, err = h.svc.Speak(context.Background(), "hello")
	var synthErr *speech.SynthesisError
	assert.ErrorAs(t, err, &synthErr)
}

package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any provider is contacted.
	ErrInvalidInput = errors.New("speech: text is empty")

	ErrMissingAPIKey = errors.New("speech: elevenlabs api key is not configured")
	errEmptyAudio    = errors.New("empty audio body")
)

// TransportError is a network-level failure talking to the primary provider.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("elevenlabs transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError means the primary provider answered but did not deliver audio.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("elevenlabs status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("elevenlabs status %d: %s", e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// SynthesisError is the terminal failure: the fallback engine could not
// produce an artifact either.
type SynthesisError struct {
	Path string
	Err  error
}

func (e *SynthesisError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("fallback synthesis: %v", e.Err)
	}
	return fmt.Sprintf("fallback synthesis to %s: %v", e.Path, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

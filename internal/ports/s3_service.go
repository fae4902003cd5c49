package ports

import "context"

// ArtifactService publishes synthesized audio.
type ArtifactService interface {
	ObjectKey(consultationID, filename string) string
	SaveAudio(ctx context.Context, consultationID, path string) (publicURL string, err error)
}

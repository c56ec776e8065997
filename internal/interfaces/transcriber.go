package interfaces

import "context"

// Transcriber converts recorded audio to text. Accuracy is owned by the
// speech service; the engine treats the transcript as any typed utterance.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

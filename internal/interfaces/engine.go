package interfaces

import (
	"context"

	"voice-trading-bot/internal/types"
)

// Engine turns one utterance from a session into a response, driving the
// parse → resolve → confirm pipeline.
type Engine interface {
	Handle(ctx context.Context, sessionID, text string) (*types.Response, error)
}

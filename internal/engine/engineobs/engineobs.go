package engineobs

import (
	"context"
	"time"

	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/trace"
	"voice-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Handle(ctx context.Context, sessionID, text string) (*types.Response, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Handle")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Handling utterance",
		"session_id", sessionID,
		"chars", len(text),
	)

	resp, err := oe.engine.Handle(ctx, sessionID, text)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Utterance handling failed", err,
			"session_id", sessionID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Utterance handled",
		"session_id", sessionID,
		"response_type", resp.Type,
		"reason", string(resp.Reason),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/types"
)

// Postgres persists chat turns and dispatched orders.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ interfaces.Recorder = (*Postgres)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS chat_history (
	id         BIGSERIAL PRIMARY KEY,
	session_id TEXT        NOT NULL,
	sender     TEXT        NOT NULL,
	message    TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chat_history_session_idx ON chat_history (session_id, created_at);

CREATE TABLE IF NOT EXISTS orders (
	id          BIGSERIAL PRIMARY KEY,
	session_id  TEXT        NOT NULL,
	side        TEXT        NOT NULL,
	code        TEXT        NOT NULL,
	name        TEXT        NOT NULL,
	qty         INTEGER     NOT NULL,
	sell_all    BOOLEAN     NOT NULL DEFAULT FALSE,
	price_type  TEXT        NOT NULL,
	limit_price BIGINT      NOT NULL DEFAULT 0,
	order_id    TEXT        NOT NULL,
	status      TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg.MaxConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	logger.Info(ctx, "Postgres recorder ready")
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) SaveChatTurn(ctx context.Context, turn types.ChatTurn) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO chat_history (session_id, sender, message, created_at) VALUES ($1, $2, $3, $4)`,
		turn.SessionID, turn.Sender, turn.Message, turn.At)
	if err != nil {
		return fmt.Errorf("saving chat turn: %w", err)
	}
	return nil
}

func (p *Postgres) SaveOrder(ctx context.Context, sessionID string, intent types.CommandIntent, resp types.OrderResp) error {
	var code, name string
	if intent.Security != nil {
		code, name = intent.Security.Code, intent.Security.Name
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO orders (session_id, side, code, name, qty, sell_all, price_type, limit_price, order_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sessionID, string(intent.Action), code, name,
		intent.Quantity, intent.SellAll, string(intent.PriceType), intent.LimitPrice,
		resp.OrderID, resp.Status)
	if err != nil {
		return fmt.Errorf("saving order: %w", err)
	}
	return nil
}

func (p *Postgres) ChatHistory(ctx context.Context, sessionID string, limit int) ([]types.ChatTurn, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.pool.Query(ctx,
		`SELECT session_id, sender, message, created_at
		 FROM chat_history
		 WHERE session_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chat history: %w", err)
	}
	defer rows.Close()

	var turns []types.ChatTurn
	for rows.Next() {
		var t types.ChatTurn
		if err := rows.Scan(&t.SessionID, &t.Sender, &t.Message, &t.At); err != nil {
			return nil, fmt.Errorf("scanning chat turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chat history: %w", err)
	}

	// Oldest first for rendering.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

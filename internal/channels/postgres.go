package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainchannels "github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

const selectChannelSQL = `
SELECT only_scoring_plays, game_advisories, in_play_delay, no_play_delay, show_score_on_out3
FROM channels
WHERE id = $1`

// Postgres reads settings from the channels table. Missing rows and NULL
// columns fall back to defaults.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool and verifies connectivity.
func ConnectPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logging.Info(logger, "channel config database connected", "max_conns", poolCfg.MaxConns)
	return pool, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, channelID string) (domainchannels.Config, error) {
	var (
		onlyScoring, advisories, showScore *bool
		inPlay, noPlay                     *int32
	)
	err := p.pool.QueryRow(ctx, selectChannelSQL, channelID).
		Scan(&onlyScoring, &advisories, &inPlay, &noPlay, &showScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return domainchannels.Defaults(), nil
	}
	if err != nil {
		return domainchannels.Config{}, fmt.Errorf("load channel %s settings: %w", channelID, err)
	}

	cfg := domainchannels.Defaults()
	if onlyScoring != nil {
		cfg.OnlyScoringPlays = *onlyScoring
	}
	if advisories != nil {
		cfg.GameAdvisories = *advisories
	}
	if inPlay != nil {
		cfg.InPlayDelaySeconds = int(*inPlay)
	}
	if noPlay != nil {
		cfg.NoPlayDelaySeconds = int(*noPlay)
	}
	if showScore != nil {
		cfg.ShowScoreOnThirdOut = *showScore
	}
	return cfg, nil
}

package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS active_games (
	channel_id TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// SQLite stores active games in a single-file database.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create registry dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}
	// One connection keeps writes serialised and pragmas in effect.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize registry schema: %w", err)
	}

	logging.Info(logger, "registry opened", "backend", "sqlite", "path", path)
	return &SQLite{db: db, logger: logger}, nil
}

func (s *SQLite) Put(ctx context.Context, game games.ActiveGame) error {
	value, err := Encode(game)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO active_games (channel_id, value) VALUES (?, ?) ON CONFLICT(channel_id) DO NOTHING`,
		game.ChannelID, value)
	if err != nil {
		return fmt.Errorf("put active game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("put active game: %w", err)
	}
	if n == 0 {
		existing, _, _ := s.Get(ctx, game.ChannelID)
		return &domain.ConflictError{ChannelID: game.ChannelID, GameID: existing.GameID}
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, channelID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM active_games WHERE channel_id = ?`, channelID)
	if err != nil {
		return false, fmt.Errorf("remove active game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove active game: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) RemoveGame(ctx context.Context, game games.ActiveGame) (bool, error) {
	value, err := Encode(game)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM active_games WHERE channel_id = ? AND value = ?`, game.ChannelID, value)
	if err != nil {
		return false, fmt.Errorf("remove active game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove active game: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) Get(ctx context.Context, channelID string) (games.ActiveGame, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM active_games WHERE channel_id = ?`, channelID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return games.ActiveGame{}, false, nil
	}
	if err != nil {
		return games.ActiveGame{}, false, fmt.Errorf("get active game: %w", err)
	}
	game, err := Decode(value)
	if err != nil {
		return games.ActiveGame{}, false, err
	}
	return game, true, nil
}

// All returns every decodable entry. Corrupt rows are logged and skipped so
// one bad value cannot block resuming the rest.
func (s *SQLite) All(ctx context.Context) ([]games.ActiveGame, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT channel_id, value FROM active_games ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()

	result := make([]games.ActiveGame, 0)
	for rows.Next() {
		var channelID string
		var value []byte
		if err := rows.Scan(&channelID, &value); err != nil {
			return nil, fmt.Errorf("scan active game: %w", err)
		}
		game, err := Decode(value)
		if err != nil {
			logging.Warn(s.logger, "skipping corrupt registry entry", logging.FieldChannelID, channelID, "err", err)
			continue
		}
		result = append(result, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	return result, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

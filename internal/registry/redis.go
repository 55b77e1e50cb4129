package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

// removeIfEqualScript deletes a hash field only when it still holds the
// expected value.
// KEYS: [1]=hash  ARGV: [1]=channel id, [2]=encoded game
var removeIfEqualScript = goredis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) == ARGV[2] then
	return redis.call('HDEL', KEYS[1], ARGV[1])
end
return 0
`)

// RedisOptions configures the Redis-backed registry.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Redis stores active games as fields of one hash keyed by channel.
type Redis struct {
	rdb    *goredis.Client
	key    string
	logger *slog.Logger
}

// OpenRedis connects and verifies the server is reachable.
func OpenRedis(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	logging.Info(logger, "registry opened", "backend", "redis", "addr", opts.Addr, "key", opts.Key)
	return NewRedis(rdb, opts.Key, logger), nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *goredis.Client, key string, logger *slog.Logger) *Redis {
	return &Redis{rdb: rdb, key: key, logger: logger}
}

func (r *Redis) Put(ctx context.Context, game games.ActiveGame) error {
	value, err := Encode(game)
	if err != nil {
		return err
	}
	ok, err := r.rdb.HSetNX(ctx, r.key, game.ChannelID, value).Result()
	if err != nil {
		return fmt.Errorf("put active game: %w", err)
	}
	if !ok {
		existing, _, _ := r.Get(ctx, game.ChannelID)
		return &domain.ConflictError{ChannelID: game.ChannelID, GameID: existing.GameID}
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, channelID string) (bool, error) {
	n, err := r.rdb.HDel(ctx, r.key, channelID).Result()
	if err != nil {
		return false, fmt.Errorf("remove active game: %w", err)
	}
	return n > 0, nil
}

func (r *Redis) RemoveGame(ctx context.Context, game games.ActiveGame) (bool, error) {
	value, err := Encode(game)
	if err != nil {
		return false, err
	}
	n, err := removeIfEqualScript.Run(ctx, r.rdb, []string{r.key}, game.ChannelID, value).Int64()
	if err != nil {
		return false, fmt.Errorf("remove active game script: %w", err)
	}
	return n > 0, nil
}

func (r *Redis) Get(ctx context.Context, channelID string) (games.ActiveGame, bool, error) {
	value, err := r.rdb.HGet(ctx, r.key, channelID).Bytes()
	if errors.Is(err, goredis.Nil) {
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

// All returns every decodable entry sorted by channel; corrupt fields are logged and skipped.
func (r *Redis) All(ctx context.Context) ([]games.ActiveGame, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	result := make([]games.ActiveGame, 0, len(fields))
	for channelID, value := range fields {
		game, err := Decode([]byte(value))
		if err != nil {
			logging.Warn(r.logger, "skipping corrupt registry entry", logging.FieldChannelID, channelID, "err", err)
			continue
		}
		result = append(result, game)
	}
	sortByChannel(result)
	return result, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

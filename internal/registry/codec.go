package registry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

// ErrCorruptValue is returned when a stored value cannot be decoded.
var ErrCorruptValue = errors.New("corrupt registry value")

// Encode serialises a game as gameId, locale, channelId, each written as a
// big-endian uint16 byte length followed by the UTF-8 bytes.
func Encode(game games.ActiveGame) ([]byte, error) {
	fields := []string{game.GameID, game.Locale, game.ChannelID}
	size := 0
	for _, f := range fields {
		if len(f) > math.MaxUint16 {
			return nil, fmt.Errorf("encode registry value: field of %d bytes exceeds %d", len(f), math.MaxUint16)
		}
		size += 2 + len(f)
	}

	buf := make([]byte, 0, size)
	for _, f := range fields {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(f)))
		buf = append(buf, f...)
	}
	return buf, nil
}

// Decode parses a value written by Encode. Bytes after the last known field
// are ignored.
func Decode(data []byte) (games.ActiveGame, error) {
	var fields [3]string
	rest := data
	for i := range fields {
		if len(rest) < 2 {
			return games.ActiveGame{}, fmt.Errorf("%w: truncated length at field %d", ErrCorruptValue, i)
		}
		n := int(binary.BigEndian.Uint16(rest))
		rest = rest[2:]
		if len(rest) < n {
			return games.ActiveGame{}, fmt.Errorf("%w: field %d wants %d bytes, have %d", ErrCorruptValue, i, n, len(rest))
		}
		fields[i] = string(rest[:n])
		rest = rest[n:]
	}
	return games.ActiveGame{GameID: fields[0], Locale: fields[1], ChannelID: fields[2]}, nil
}

package registry

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

func TestCodecRoundTrip(t *testing.T) {
	game := games.ActiveGame{GameID: "745123", ChannelID: "chan-é", Locale: "es"}

	data, err := Encode(game)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != game {
		t.Fatalf("expected %+v, got %+v", game, got)
	}
}

func TestEncodeFieldOrderAndLengths(t *testing.T) {
	data, err := Encode(games.ActiveGame{GameID: "12", Locale: "en", ChannelID: "c"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0, 2, '1', '2', 0, 2, 'e', 'n', 0, 1, 'c'}
	if !bytes.Equal(data, want) {
		t.Fatalf("expected %v, got %v", want, data)
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	data, _ := Encode(games.ActiveGame{GameID: "1", Locale: "en", ChannelID: "c"})
	data = append(data, 0, 3, 'x', 'y', 'z')

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ChannelID != "c" || got.GameID != "1" {
		t.Fatalf("unexpected decode %+v", got)
	}
}

func TestDecodeRejectsTruncatedValues(t *testing.T) {
	cases := [][]byte{
		nil,
		{0},
		{0, 5, 'a'},
		{0, 1, 'a', 0, 1, 'b'},
	}
	for _, data := range cases {
		if _, err := Decode(data); !errors.Is(err, ErrCorruptValue) {
			t.Fatalf("expected corrupt value error for %v, got %v", data, err)
		}
	}
}

func TestEncodeRejectsOversizedField(t *testing.T) {
	game := games.ActiveGame{GameID: "1", Locale: "en", ChannelID: strings.Repeat("x", 1<<16)}
	if _, err := Encode(game); err == nil {
		t.Fatalf("expected oversized field to be rejected")
	}
}

package channels

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadFileMergesWithDefaults(t *testing.T) {
	path := writeYAML(t, `
channels:
  "1001":
    only_scoring_plays: true
    in_play_delay: 0
  "1002":
    game_advisories: false
    show_score_on_out3: false
`)
	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()

	first, _ := p.Get(ctx, "1001")
	if !first.OnlyScoringPlays || first.InPlayDelaySeconds != 0 || first.NoPlayDelaySeconds != 18 || !first.GameAdvisories {
		t.Fatalf("unexpected merged settings %+v", first)
	}
	second, _ := p.Get(ctx, "1002")
	if second.GameAdvisories || second.ShowScoreOnThirdOut || second.InPlayDelaySeconds != 13 {
		t.Fatalf("unexpected merged settings %+v", second)
	}
	other, _ := p.Get(ctx, "9999")
	if !other.IsDefault() {
		t.Fatalf("expected defaults for unknown channel, got %+v", other)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
	if _, err := LoadFile(writeYAML(t, "channels: [not, a, map")); err == nil {
		t.Fatalf("expected parse error")
	}
}

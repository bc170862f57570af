package tts

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscast/internal/episode"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	fail  int
	write bool
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, call{name: name, args: args})
	if len(r.calls) <= r.fail {
		return nil, errors.New("tts engine crashed")
	}
	if r.write {
		out := args[len(args)-1]
		for i, a := range args {
			if (a == "--output" || a == "--write-media") && i+1 < len(args) {
				out = args[i+1]
			}
		}
		if err := os.WriteFile(out, []byte("ID3"), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

type fakeClock struct{ sleeps []time.Duration }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

func setupEpisode(t *testing.T, script string) episode.Layout {
	t.Helper()
	layout := episode.NewLayout(t.TempDir(), 5)
	require.NoError(t, layout.Create())
	require.NoError(t, episode.WriteScript(layout.ScriptPath(), script))
	return layout
}

func TestGenerate_GTTS(t *testing.T) {
	layout := setupEpisode(t, "Welcome to podcast number 5.")
	runner := &fakeRunner{write: true}

	out, err := New(DefaultConfig(), WithRunner(runner)).Generate(context.Background(), layout)

	require.NoError(t, err)
	assert.Equal(t, layout.AudioPath(), out)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "gtts-cli", runner.calls[0].name)
	assert.Equal(t, []string{"--file", layout.ScriptPath(), "--lang", "en", "--output", layout.AudioPath()}, runner.calls[0].args)
}

func TestGenerate_RetriesThenSucceeds(t *testing.T) {
	layout := setupEpisode(t, "text")
	runner := &fakeRunner{fail: 2, write: true}
	clock := &fakeClock{}

	_, err := New(DefaultConfig(), WithRunner(runner), WithClock(clock)).Generate(context.Background(), layout)

	require.NoError(t, err)
	assert.Len(t, runner.calls, 3)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, clock.sleeps)
}

func TestGenerate_GivesUp(t *testing.T) {
	layout := setupEpisode(t, "text")
	runner := &fakeRunner{fail: 10}

	_, err := New(DefaultConfig(), WithRunner(runner), WithClock(&fakeClock{})).Generate(context.Background(), layout)

	require.Error(t, err)
	assert.Len(t, runner.calls, 3)
	assert.Contains(t, err.Error(), "tts engine crashed")
}

func TestGenerate_EmptyScript(t *testing.T) {
	layout := setupEpisode(t, "  \n")

	_, err := New(DefaultConfig(), WithRunner(&fakeRunner{})).Generate(context.Background(), layout)

	assert.ErrorIs(t, err, ErrEmptyScript)
}

func TestGenerate_MissingScript(t *testing.T) {
	layout := episode.NewLayout(t.TempDir(), 1)

	_, err := New(DefaultConfig(), WithRunner(&fakeRunner{})).Generate(context.Background(), layout)

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerate_NoOutputProduced(t *testing.T) {
	layout := setupEpisode(t, "text")

	_, err := New(DefaultConfig(), WithRunner(&fakeRunner{})).Generate(context.Background(), layout)

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		command  string
		wantName string
		wantArgs []string
	}{
		{"edge-tts", "edge-tts", []string{"--file", "s.txt", "--write-media", "o.mp3", "--voice", "en-US-GuyNeural"}},
		{"/opt/tts/speak.py", "python3", []string{"/opt/tts/speak.py", "--file", "s.txt", "--output", "o.mp3"}},
		{"my-tts", "my-tts", []string{"--file", "s.txt", "--output", "o.mp3"}},
		{"/usr/local/bin/gtts-cli", "/usr/local/bin/gtts-cli", []string{"--file", "s.txt", "--lang", "en", "--output", "o.mp3"}},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Command = tt.command
			name, args := New(cfg).commandLine("s.txt", "o.mp3")
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

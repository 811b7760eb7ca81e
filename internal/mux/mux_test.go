package mux

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"subforge/internal/config"
	"subforge/internal/services"
)

func muxConfig() *config.Config {
	cfg := config.Default()
	cfg.MuxSubtitles = true
	cfg.Language = "ja"
	cfg.FFmpegPath = "ffmpeg"
	return cfg
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMuxDisabledIsNoop(t *testing.T) {
	cfg := muxConfig()
	cfg.MuxSubtitles = false
	muxer := NewMuxer(cfg, nil)
	muxer.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		t.Fatal("command runner should not be invoked when muxing is disabled")
		return nil
	})

	if err := muxer.Mux(context.Background(), "/media/ep.mkv", "/media/ep.ja.srt", "item-1"); err != nil {
		t.Fatalf("Mux: %v", err)
	}
}

func TestMuxMissingSubtitleSkips(t *testing.T) {
	dir := t.TempDir()
	mediaPath := writeFixture(t, dir, "ep.mkv", "media")

	muxer := NewMuxer(muxConfig(), nil)
	called := false
	muxer.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		called = true
		return nil
	})

	if err := muxer.Mux(context.Background(), mediaPath, filepath.Join(dir, "missing.srt"), "item-1"); err != nil {
		t.Fatalf("Mux: %v", err)
	}
	if called {
		t.Error("ffmpeg invoked despite missing subtitle file")
	}
}

func TestMuxUnmappedExtensionSkips(t *testing.T) {
	dir := t.TempDir()
	mediaPath := writeFixture(t, dir, "ep.avi", "media")
	srtPath := writeFixture(t, dir, "ep.ja.srt", "1\n")

	muxer := NewMuxer(muxConfig(), nil)
	called := false
	muxer.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		called = true
		return nil
	})

	if err := muxer.Mux(context.Background(), mediaPath, srtPath, "item-1"); err != nil {
		t.Fatalf("Mux: %v", err)
	}
	if called {
		t.Error("ffmpeg invoked for container with no codec mapping")
	}
}

func TestMuxSuccessReplacesOriginal(t *testing.T) {
	dir := t.TempDir()
	mediaPath := writeFixture(t, dir, "Episode.MKV", "original media")
	srtPath := writeFixture(t, dir, "Episode.ja.srt", "1\n")

	muxer := NewMuxer(muxConfig(), nil)
	var gotName string
	var gotArgs []string
	muxer.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(args[len(args)-1], []byte("muxed media"), 0o644)
	})

	if err := muxer.Mux(context.Background(), mediaPath, srtPath, "item-1"); err != nil {
		t.Fatalf("Mux: %v", err)
	}

	if gotName != "ffmpeg" {
		t.Errorf("command = %q, want ffmpeg", gotName)
	}
	wantTmp := filepath.Join(dir, "Episode.muxing.MKV")
	if gotArgs[len(gotArgs)-1] != wantTmp {
		t.Errorf("temp output = %q, want %q", gotArgs[len(gotArgs)-1], wantTmp)
	}
	for _, want := range [][]string{
		{"-map", "0"},
		{"-map", "-0:s"},
		{"-map", "1:0"},
		{"-c", "copy"},
		{"-c:s", "srt"},
		{"-metadata:s:s:0", "language=jpn"},
	} {
		found := false
		for i := 0; i+1 < len(gotArgs); i++ {
			if gotArgs[i] == want[0] && gotArgs[i+1] == want[1] {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("args missing %v: %v", want, gotArgs)
		}
	}
	if !slices.Contains(gotArgs, "-y") {
		t.Errorf("args missing -y: %v", gotArgs)
	}

	data, err := os.ReadFile(mediaPath)
	if err != nil {
		t.Fatalf("read media: %v", err)
	}
	if string(data) != "muxed media" {
		t.Errorf("media content = %q, want muxed output", data)
	}
	if _, err := os.Stat(wantTmp); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestMuxCodecLookupIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	mediaPath := writeFixture(t, dir, "clip.MP4", "media")
	srtPath := writeFixture(t, dir, "clip.ja.srt", "1\n")

	muxer := NewMuxer(muxConfig(), nil)
	var codec string
	muxer.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		codec = argAfter(args, "-c:s")
		return os.WriteFile(args[len(args)-1], []byte("muxed"), 0o644)
	})

	if err := muxer.Mux(context.Background(), mediaPath, srtPath, "item-1"); err != nil {
		t.Fatalf("Mux: %v", err)
	}
	if codec != "mov_text" {
		t.Errorf("codec = %q, want mov_text", codec)
	}
}

func TestMuxFailureLeavesOriginalAndCleansTemp(t *testing.T) {
	dir := t.TempDir()
	mediaPath := writeFixture(t, dir, "ep.mkv", "original media")
	srtPath := writeFixture(t, dir, "ep.ja.srt", "1\n")

	muxer := NewMuxer(muxConfig(), nil)
	muxer.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		// Simulate ffmpeg dying after creating a partial output.
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		return errors.New("ffmpeg exited with status 1")
	})

	err := muxer.Mux(context.Background(), mediaPath, srtPath, "item-1")
	if !errors.Is(err, services.ErrMux) {
		t.Fatalf("error = %v, want ErrMux", err)
	}

	data, err2 := os.ReadFile(mediaPath)
	if err2 != nil {
		t.Fatalf("read media: %v", err2)
	}
	if string(data) != "original media" {
		t.Errorf("original media modified on failure: %q", data)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "ep.muxing.mkv")); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("temp file left behind after failure: %v", statErr)
	}
}

func argAfter(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

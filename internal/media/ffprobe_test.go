package media_test

import (
	"context"
	"errors"
	"testing"

	"slidecast/internal/media"
	"slidecast/internal/services"
)

func TestAudioDurationFromFormat(t *testing.T) {
	prober := media.NewProber("ffprobe")
	prober.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{"format":{"duration":"42.5"},"streams":[{"codec_type":"audio","channels":2}]}`), nil
	})

	d, err := prober.AudioDuration(context.Background(), "song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if d != 42.5 {
		t.Fatalf("duration = %g, want 42.5", d)
	}
}

func TestAudioDurationFallsBackToStream(t *testing.T) {
	prober := media.NewProber("")
	prober.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{"format":{},"streams":[{"codec_type":"video"},{"codec_type":"audio","duration":"12.25"}]}`), nil
	})

	d, err := prober.AudioDuration(context.Background(), "clip.m4a")
	if err != nil {
		t.Fatal(err)
	}
	if d != 12.25 {
		t.Fatalf("duration = %g, want 12.25", d)
	}
}

func TestAudioDurationMissing(t *testing.T) {
	prober := media.NewProber("")
	prober.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{"format":{},"streams":[]}`), nil
	})

	if _, err := prober.AudioDuration(context.Background(), "weird.bin"); err == nil {
		t.Fatal("expected error when no duration is reported")
	}
}

func TestInspectToolFailure(t *testing.T) {
	prober := media.NewProber("")
	prober.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})

	_, err := prober.Inspect(context.Background(), "broken.mp3")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("error not tagged as external tool failure: %v", err)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	prober := media.NewProber("")
	if _, err := prober.Inspect(context.Background(), "  "); !services.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHasAudioStream(t *testing.T) {
	r := media.Result{Streams: []media.Stream{{CodecType: "video"}}}
	if r.HasAudioStream() {
		t.Fatal("video-only result should not report audio")
	}
	r.Streams = append(r.Streams, media.Stream{CodecType: "Audio"})
	if !r.HasAudioStream() {
		t.Fatal("case-insensitive audio stream not detected")
	}
}

package hal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRunHeadlessTickLimit(t *testing.T) {
	steps := 0
	var fb Framebuffer
	err := RunHeadless(context.Background(), Options{Width: 8, Height: 4}, func(h HAL) (func() error, error) {
		fb = h.Display().Framebuffer()
		return func() error {
			steps++
			return nil
		}, nil
	}, HeadlessConfig{Hz: 1000, Ticks: 5})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 5 {
		t.Fatalf("steps = %d, want 5", steps)
	}
	if fb.Width() != 8 || fb.Height() != 4 || fb.StrideBytes() != 16 || len(fb.Buffer()) != 64 {
		t.Fatalf("framebuffer %dx%d stride %d len %d", fb.Width(), fb.Height(), fb.StrideBytes(), len(fb.Buffer()))
	}
}

func TestRunHeadlessQuit(t *testing.T) {
	steps := 0
	err := RunHeadless(context.Background(), Options{}, func(HAL) (func() error, error) {
		return func() error {
			steps++
			if steps == 3 {
				return ErrQuit
			}
			return nil
		}, nil
	}, HeadlessConfig{Hz: 1000})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 3 {
		t.Fatalf("steps = %d, want 3", steps)
	}
}

func TestRunHeadlessErrors(t *testing.T) {
	boom := errors.New("boom")

	err := RunHeadless(context.Background(), Options{}, func(HAL) (func() error, error) {
		return nil, boom
	}, HeadlessConfig{Hz: 1000, Ticks: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("init failure: got %v, want boom", err)
	}

	err = RunHeadless(context.Background(), Options{}, func(HAL) (func() error, error) {
		return func() error { return boom }, nil
	}, HeadlessConfig{Hz: 1000, Ticks: 10})
	if !errors.Is(err, boom) {
		t.Fatalf("step failure: got %v, want boom", err)
	}
}

func TestRunHeadlessCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := RunHeadless(ctx, Options{}, func(HAL) (func() error, error) {
		return func() error {
			cancel()
			return nil
		}, nil
	}, HeadlessConfig{Hz: 1000})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestHostTimeTicks(t *testing.T) {
	now := time.Unix(100, 0)
	ht := newHostTimeWithClock(func() time.Time { return now })

	ht.step(1)
	now = now.Add(2500 * time.Microsecond)
	ht.step(1)
	now = now.Add(600 * time.Microsecond)
	ht.step(1)
	now = now.Add(100 * time.Microsecond)
	ht.step(1)

	var got []uint64
	for len(ht.ch) > 0 {
		got = append(got, <-ht.ch)
	}
	want := []uint64{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("ticks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ticks = %v, want %v", got, want)
		}
	}
}

func TestFramebufferSnapshot(t *testing.T) {
	fb := newHostFramebuffer(2, 1)
	fb.ClearRGB(0xFF, 0, 0)
	if err := fb.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	dst := make([]byte, 2*4)
	if frames := fb.snapshotRGBA(dst); frames != 1 {
		t.Fatalf("frames = %d, want 1", frames)
	}
	want := []byte{0xFF, 0, 0, 0xFF, 0xFF, 0, 0, 0xFF}
	if !bytes.Equal(dst, want) {
		t.Fatalf("snapshot = % x, want % x", dst, want)
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	l.WriteLineString("mesh built")
	l.WriteLineBytes([]byte("first frame"))

	out := buf.String()
	for _, s := range []string{"level=INFO", "mesh built", "first frame"} {
		if !strings.Contains(out, s) {
			t.Fatalf("log output %q missing %q", out, s)
		}
	}
}

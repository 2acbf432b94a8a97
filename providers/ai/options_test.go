package ai

import (
	"errors"
	"testing"
)

func TestDecodeOptions(t *testing.T) {
	type videoOptions struct {
		Frames         int     `json:"frames"`
		FPS            int     `json:"fps"`
		MotionStrength float64 `json:"motion_strength"`
		Seed           int     `json:"seed,omitempty"`
	}

	t.Run("weak conversion keeps defaults", func(t *testing.T) {
		opts := videoOptions{Frames: 25, FPS: 6, MotionStrength: 0.5}
		err := DecodeOptions(map[string]any{"frames": 14.0, "fps": "24", "unknown": true}, &opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Frames != 14 || opts.FPS != 24 {
			t.Errorf("expected converted values, got %+v", opts)
		}
		if opts.MotionStrength != 0.5 {
			t.Errorf("expected default motion strength, got %v", opts.MotionStrength)
		}
	})

	t.Run("nil options", func(t *testing.T) {
		opts := videoOptions{Frames: 25}
		if err := DecodeOptions(nil, &opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Frames != 25 {
			t.Errorf("expected untouched struct, got %+v", opts)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		var opts videoOptions
		err := DecodeOptions(map[string]any{"frames": "many"}, &opts)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	})
}

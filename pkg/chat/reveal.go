package chat

import (
	"context"
	"time"
)

// Reveal emits growing prefixes of text, step runes at a time, one per
// interval. The last emit carries the full text with done set.
func Reveal(ctx context.Context, text string, step int, interval time.Duration, emit func(prefix string, done bool) error) error {
	if step < 1 {
		step = 1
	}
	runes := []rune(text)
	if len(runes) <= step || interval <= 0 {
		return emit(text, true)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for end := step; ; end += step {
		if end >= len(runes) {
			return emit(text, true)
		}
		if err := emit(string(runes[:end]), false); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

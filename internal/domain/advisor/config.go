package advisor

import "time"

// Config tunes the AI augmentation calls.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	CacheTTL    time.Duration
}

const defaultTimeout = 15 * time.Second

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

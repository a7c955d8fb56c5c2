// File: internal/services/soapnote/config.go
package soapnote

import (
	"fmt"
	"time"
)

type Config struct {
	// Upper bound for the single model call, on top of any caller deadline.
	GenerationTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("generation_timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		GenerationTimeout: 90 * time.Second,
	}
}

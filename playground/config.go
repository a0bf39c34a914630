package playground

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/playground/correlate"
	"github.com/jonwraymond/playground/transport"
	"github.com/jonwraymond/playground/transport/websocket"
)

// DefaultDialTimeout bounds Connect when ctx has no deadline.
const DefaultDialTimeout = 10 * time.Second

// Logger is the logging interface shared by the manager, the correlation
// engine and the transport adapter.
type Logger = correlate.Logger

// Config configures a Manager.
type Config struct {
	// URL is the address of the playground service, e.g. ws://localhost:8080/.
	// Required.
	URL string

	// Dialer opens the duplex channel.
	// Default: websocket.Dialer{}
	Dialer transport.Dialer

	// IDs generates correlation IDs.
	// Default: correlate.Base36Generator{}
	IDs correlate.IDGenerator

	// DialTimeout bounds Connect when its context has no deadline.
	// Default: DefaultDialTimeout
	DialTimeout time.Duration

	// Logger is an optional logger.
	Logger Logger
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, "URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s",
			ErrConfiguration, strings.Join(missing, ", "))
	}
	if c.DialTimeout < 0 {
		return fmt.Errorf("%w: negative DialTimeout", ErrConfiguration)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Dialer == nil {
		c.Dialer = websocket.Dialer{}
	}
	if c.IDs == nil {
		c.IDs = correlate.Base36Generator{}
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.Logger == nil {
		c.Logger = correlate.NopLogger()
	}
}

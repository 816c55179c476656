package config

import (
	"time"
)

const (
	DefaultAddr           = "0.0.0.0:9300"
	DefaultHTTPAddr       = "0.0.0.0:9301"
	DefaultMaxRequestSize = 100 << 20
)

// ServerConfig holds the configuration for a Server.
type ServerConfig struct {
	// Addr is where the binary protocol listens.
	Addr string
	// HTTPAddr serves /metrics. Empty disables it.
	HTTPAddr string
	// MaxRequestSize bounds a single frame. Larger frames close the connection.
	// Zero or negative allows any frame an int32 size prefix can describe.
	MaxRequestSize int32
	// IdleTimeout closes connections that send nothing for this long. Zero
	// means never.
	IdleTimeout time.Duration
}

// DefaultServerConfig creates/returns a default configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:           DefaultAddr,
		HTTPAddr:       DefaultHTTPAddr,
		MaxRequestSize: DefaultMaxRequestSize,
		IdleTimeout:    5 * time.Minute,
	}
}

// ClientConfig holds the configuration for a client connection.
type ClientConfig struct {
	// ClientID is sent in every request header. A random one is generated
	// when empty.
	ClientID string
	// APIVersion pins the simulate pipeline version instead of negotiating
	// it. Nil means negotiate.
	APIVersion     *int16
	DialRetries    uint64
	RequestTimeout time.Duration
}

func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		DialRetries:    3,
		RequestTimeout: 30 * time.Second,
	}
}

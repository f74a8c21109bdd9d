package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPurgePoll       = time.Minute
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
)

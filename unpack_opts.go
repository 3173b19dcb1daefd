package unpack

import "log/slog"

// Option configures a session at Open.
type Option func(*Archive)

// WithPassword sets the default password for all operations. Individual
// operations can override it with their own password options.
func WithPassword(password string) Option {
	return func(a *Archive) {
		a.password = password
	}
}

// WithCodec pins the decoder instead of selecting one by format on each
// operation. Intended for custom formats and for tests.
func WithCodec(c Codec) Option {
	return func(a *Archive) {
		a.codec = c
	}
}

// WithBufferSize sets the chunk buffer size for streaming reads.
// Sizes below one byte fall back to DefaultBufferSize.
func WithBufferSize(size int) Option {
	return func(a *Archive) {
		if size > 0 {
			a.bufferSize = size
		}
	}
}

// WithMaxFileSize caps single entries read into memory by ReadFile and
// Walk. Entries over the cap fail with ErrNoMemory. Sizes below one byte
// fall back to DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(a *Archive) {
		if size > 0 {
			a.maxFileSize = size
		}
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// ReadOption configures a single catalog or read operation.
type ReadOption func(*readConfig)

type readConfig struct {
	password    string
	passwordSet bool
}

// ReadWithPassword overrides the session password for one operation.
func ReadWithPassword(password string) ReadOption {
	return func(c *readConfig) {
		c.password = password
		c.passwordSet = true
	}
}

// readPassword resolves the effective password for one operation.
func (a *Archive) readPassword(opts []ReadOption) string {
	var cfg readConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.passwordSet {
		return cfg.password
	}
	return a.password
}

package securedm

import "time"

// exchangeConfig holds configuration for an Exchange.
type exchangeConfig struct {
	suite string
	now   func() time.Time
}

// Option configures an Exchange.
type Option func(*exchangeConfig)

// WithSuite sets the cipher suite used for new identities and sends.
// Defaults to DefaultSuite.
func WithSuite(suite string) Option {
	return func(c *exchangeConfig) {
		c.suite = suite
	}
}

// WithClock sets the time source used for SentAt timestamps. Intended for
// tests; defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *exchangeConfig) {
		c.now = now
	}
}

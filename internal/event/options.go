package event

import "log/slog"

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	errorHandler ErrorHandler
	logger       *slog.Logger
}

func defaultBusConfig() busConfig { return busConfig{logger: slog.Default()} }

// WithErrorHandler replaces the default logging of failed deliveries.
func WithErrorHandler(h ErrorHandler) BusOption {
	return func(c *busConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithLogger sets where failed deliveries are logged when no ErrorHandler
// is set.
func WithLogger(l *slog.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// SubscriptionConfig holds per-subscription settings. Once cancels the
// subscription after its first successful delivery.
type SubscriptionConfig struct {
	Priority Priority
	Once     bool
}

func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{Priority: PriorityNormal}
}

type SubscriptionOption func(*SubscriptionConfig)

func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithOnce makes a one-shot subscription.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

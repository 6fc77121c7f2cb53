package storage

import "go.uber.org/zap"

// StoreBuilderOption configures a Store.
type StoreBuilderOption func(*store)

// WithLogger sets the logger used for load fallbacks and save notices.
func WithLogger(logger *zap.Logger) StoreBuilderOption {
	return func(s *store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

package logger

import "go.uber.org/zap"

// New builds the process logger: production encoding when env is
// "production", human-readable development encoding otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

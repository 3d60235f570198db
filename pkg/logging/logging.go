// Package logging wires up the process-wide zap logger used by every
// cmd/ entrypoint.
package logging

import "go.uber.org/zap"

// New returns a production zap logger (JSON output, info level) unless
// debug is set, in which case it returns a development logger (console
// output, debug level, stack traces on warn).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

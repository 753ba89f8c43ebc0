package config

import (
	"go.uber.org/zap"
)

// Values in this package are bound to global CLI flags by cmd and read
// everywhere else.

var Network string

var (
	RPCEndpoint string
	Verbose     bool

	// JSONOutputFile redirects structured command output from stdout
	// into a file.
	JSONOutputFile string
)

var logger *zap.SugaredLogger

// Logger returns the process-wide logger, building it on first use.
// Verbose switches to a development config with debug output.
func Logger() *zap.SugaredLogger {
	if logger != nil {
		return logger
	}
	var l *zap.Logger
	var err error
	if Verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		l = zap.NewNop()
	}
	logger = l.Sugar()
	return logger
}

// Package logging builds the zap logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where diagnostics go.
type Options struct {
	Verbose bool      // debug level on the console instead of warn
	File    string    // optional buffered JSON log file, always at debug level
	Console io.Writer // defaults to os.Stderr
}

// New returns a logger writing human-readable lines to the console and,
// when File is set, JSON lines to that file. File entries are buffered until
// the returned close func runs. Command output stays on stdout; the logger
// only carries diagnostics.
func New(opts Options) (*zap.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	level := zapcore.WarnLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeCaller = nil
	encCfg.CallerKey = zapcore.OmitKey
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(console), level),
	}

	closeFn := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("creating log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		ws := &zapcore.BufferedWriteSyncer{WS: zapcore.AddSync(f)}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), ws, zapcore.DebugLevel))
		closeFn = func() error {
			if err := ws.Stop(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}
	}

	log := zap.New(zapcore.NewTee(cores...)).Named("nftterm")
	return log, func() error {
		_ = log.Sync()
		return closeFn()
	}, nil
}

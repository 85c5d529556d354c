package main

import (
	"io"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"go.uber.org/zap"
)

// rootConfig holds the flags shared by every subcommand, following the
// teacher's rootConfig/registerBaseFlags split in cmd/trc/root.go.
type rootConfig struct {
	stdout io.Writer
	stderr io.Writer

	Debug bool

	logger *zap.Logger
}

func (cfg *rootConfig) registerBaseFlags(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		LongName:  "debug",
		Value:     ffval.NewValue(&cfg.Debug),
		NoDefault: true,
		Usage:     "enable verbose debug logging (env CTF_FS_DEBUG=1)",
	})
}

// buildLogger constructs the process zap.Logger: development-style console
// output at debug level when --debug or CTF_FS_DEBUG=1 is set, otherwise a
// production JSON logger at info level.
func (cfg *rootConfig) buildLogger() (*zap.Logger, error) {
	debug := cfg.Debug || os.Getenv("CTF_FS_DEBUG") == "1"
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

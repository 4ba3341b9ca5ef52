package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ichi0g0y/spin-the-wheel/internal/env"
	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/version"
)

// exitUsage is returned for bad command line arguments. 1-4 belong to
// configuration failures.
const exitUsage = 64

// options are the command line switches. Unset flags fall back to the
// environment.
type options struct {
	silent  bool
	logFile string
	cfgFile string
	debug   bool
	version bool
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("spin-the-wheel", flag.ContinueOnError)

	opts := options{
		silent:  env.Value.Silent,
		logFile: env.Value.LogFile,
		cfgFile: env.Value.CfgFile,
		debug:   env.Value.DebugMode,
	}
	for _, name := range []string{"s", "silent"} {
		fs.BoolVar(&opts.silent, name, opts.silent, "Turns console logging off")
	}
	for _, name := range []string{"f", "log-file"} {
		fs.StringVar(&opts.logFile, name, opts.logFile, "Logs to specified file (can be used with -s)")
	}
	for _, name := range []string{"c", "cfg-file"} {
		fs.StringVar(&opts.cfgFile, name, opts.cfgFile, "The configuration YAML file")
	}
	for _, name := range []string{"d", "debug"} {
		fs.BoolVar(&opts.debug, name, opts.debug, "Turns debug level logging on")
	}
	fs.BoolVar(&opts.version, "version", false, "Prints the version and exits")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func setupLogging(opts options) {
	if err := logger.Configure(logger.Options{
		Debug:  opts.debug,
		Silent: opts.silent,
		File:   opts.logFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "log file disabled: %v\n", err)
	}
	logger.Info(version.String())
	if opts.debug {
		logger.Info("Debug mode enabled")
	}
}

package main

import (
	"os"

	"ringbuf-nora-yu/pkg/backlog"
	"ringbuf-nora-yu/pkg/rbconfig"
	"ringbuf-nora-yu/pkg/rbshell"
	"ringbuf-nora-yu/pkg/ringbuf"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configFile string
		capacity   int
		limit      int
		script     string
		logLevel   string
	)
	cmd := &cobra.Command{
		Use:   "rbuf",
		Short: "Interactive fixed size ring buffer",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			config := rbconfig.Default()
			if configFile != "" {
				if config, err = rbconfig.ParseConfig(configFile); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("capacity") {
				config.Capacity = capacity
			}
			if cmd.Flags().Changed("backlog") {
				config.Backlog = limit
			}
			return run(config, script, logger.Sugar())
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "specify the config file")
	cmd.Flags().IntVar(&capacity, "capacity", rbconfig.DefaultCapacity, "buffer capacity in bytes")
	cmd.Flags().IntVar(&limit, "backlog", 0, "bytes to queue for rejected writes, 0 disables the backlog")
	cmd.Flags().StringVar(&script, "script", "", "run commands from a file instead of the terminal")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "one of debug, info, warn, error")
	cmd.Flags().SortFlags = false
	return cmd
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log level")
	}
	zapcfg := zap.NewProductionConfig()
	zapcfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	zapcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapcfg.Encoding = "console"
	zapcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapcfg.Build()
}

func run(config *rbconfig.Config, script string, logger *zap.SugaredLogger) error {
	rb, err := ringbuf.New(config.Capacity)
	if err != nil {
		return err
	}
	defer rb.Close()

	var bl *backlog.Backlog
	if config.Backlog > 0 {
		bl = backlog.New(rb, config.Backlog, logger.Named("backlog"))
	}
	logger.Infow("ring buffer ready", "capacity", config.Capacity, "backlog", config.Backlog)

	r := rbshell.New(rb, bl, logger.Named("shell")).Repl()
	r.Prompt = config.Prompt
	if script == "" {
		return r.Run()
	}

	fd, err := os.Open(script)
	if err != nil {
		return errors.Wrapf(err, "unable to open script %s", script)
	}
	defer fd.Close()
	return r.RunScript(fd, os.Stdout)
}

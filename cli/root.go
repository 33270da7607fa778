// Package cli wires configuration, logging and the pipeline into the
// emotion-timeline commands.
package cli

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/emotionflow/emotion-timeline/config"
)

type app struct {
	configPath string
	logLevel   string
	cfg        *cfg.Root
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "emotion-timeline",
		Short:         "Score scripts and lyrics segment by segment and plot how emotions evolve",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := cfg.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = c
			return setupLogging(c, a.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default config/$CONFIG_ENV/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overrides pipeline.log_level")

	root.AddCommand(a.serveCmd(), a.analyzeCmd(), a.configCmd())
	return root
}

func setupLogging(c *cfg.Root, override string) error {
	lvl := c.Pipeline.LogLvl
	if override != "" {
		lvl = override
	}
	level, err := log.ParseLevel(lvl)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaylashop/storefront/pkg/config"
	"github.com/gaylashop/storefront/pkg/logger"
)

type cli struct {
	configPath string
	backend    string
	dataDir    string
	logLevel   string

	cfg  *config.Config
	log  *zap.Logger
	tab  *tab
	shop *shop
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Manage the Gayla shop cart stored on this device",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd); err != nil {
				c.teardown()
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "storage backend: file or sqlite")
	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "directory holding the storage area and shop database")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		c.addCmd(),
		c.updateCmd(),
		c.removeCmd(),
		c.clearCmd(),
		c.listCmd(),
		c.countCmd(),
		c.watchCmd(),
		c.quoteCmd(),
		c.checkoutCmd(),
		c.productCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Storage.Backend = c.backend
	}
	if flags.Changed("data-dir") {
		cfg.Storage.DataDir = c.dataDir
	}
	if flags.Changed("log-level") {
		cfg.App.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	c.log, err = logger.New(logger.Options{Service: "cartctl", Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c.tab, err = openTab(ctx, cfg, c.log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	c.shop, err = openShop(ctx, cfg, c.tab, c.log)
	if err != nil {
		return fmt.Errorf("open shop database: %w", err)
	}
	return nil
}

// run wraps a command body so the tab and shop are closed even when it fails.
func (c *cli) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer c.teardown()
		return fn(cmd, args)
	}
}

func (c *cli) teardown() {
	log := c.log
	if log == nil {
		log = zap.NewNop()
	}
	if c.shop != nil {
		if err := c.shop.db.Close(); err != nil {
			log.Warn("close shop database", zap.Error(err))
		}
		c.shop = nil
	}
	if c.tab != nil {
		if err := c.tab.close(); err != nil {
			log.Warn("close storage", zap.Error(err))
		}
		c.tab = nil
	}
	_ = log.Sync()
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diamond-dashboard/internal/config"
	"diamond-dashboard/internal/dashboard"
	"diamond-dashboard/internal/logging"
	"diamond-dashboard/internal/store"
)

// cli holds the state shared by every command once the root pre-run has
// loaded the configuration.
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "diamond-dashboard",
		Short: "Diamond market analytics dashboard",
		Long: `Serves a single-page dashboard of diamond production, market share and
price-per-carat statistics, with a country filter on the mine map.

Data is read once at startup from the configured database. Run "seed" to
create the tables with the bundled sample data.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "dashboard.yaml", "Config file (optional)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		c.serveCmd(),
		c.seedCmd(),
		c.exportCmd(),
		c.publishCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging, c.verbose)
	if err != nil {
		return err
	}
	c.cfg, c.logger = cfg, logger

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

// openStore opens the configured database.
func (c *cli) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, c.cfg.Database.Driver, c.cfg.Database.DSN, c.logger)
}

// loadApp reads every table and builds the dashboard. The database is only
// needed for the load and is closed before returning.
func (c *cli) loadApp(ctx context.Context) (*dashboard.App, error) {
	s, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return dashboard.Load(ctx, s, c.cfg.Dashboard.TopN, c.logger)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

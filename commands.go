package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diamond-dashboard/internal/excel"
	"diamond-dashboard/internal/graceful"
	"diamond-dashboard/internal/models"
	"diamond-dashboard/internal/publish"
	"diamond-dashboard/internal/server"
	"diamond-dashboard/internal/store"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the data and serve the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := graceful.Context(cmd.Context(), c.logger)
			defer cancel()

			app, err := c.loadApp(ctx)
			if err != nil {
				return err
			}
			router := server.New(app, c.cfg, c.logger)
			return server.Run(ctx, ":"+c.cfg.Server.Port, router, c.logger)
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	var minesXLSX, minesSheet string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the source tables and fill them with sample data",
		Long: `Drops and recreates the six source tables with the bundled sample data.

With --mines-xlsx the mine locations are read from a workbook instead. The
sheet's header row must name COUNTRY, LAT and LONG columns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tables := store.SampleTables()

			if minesXLSX != "" {
				mines, err := readMines(minesXLSX, minesSheet)
				if err != nil {
					return err
				}
				for i, t := range tables {
					if t.Name == store.TableMines {
						tables[i] = store.MinesTable(mines)
					}
				}
				c.logger.Info("Read mine locations from workbook",
					zap.String("file", minesXLSX), zap.Int("mines", len(mines)))
			}

			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Seed(ctx, tables...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d tables into %s\n", len(tables), c.cfg.Database.DSN)
			return nil
		},
	}
	cmd.Flags().StringVar(&minesXLSX, "mines-xlsx", "", "Workbook with mine locations")
	cmd.Flags().StringVar(&minesSheet, "mines-sheet", "", "Sheet to read (default: first sheet)")
	return cmd
}

func readMines(path, sheet string) ([]models.MineLocation, error) {
	f, err := excel.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	mines, err := excel.ReadMines(f, sheet)
	if err != nil {
		return nil, err
	}
	if len(mines) == 0 {
		return nil, fmt.Errorf("%s: no valid mine rows in sheet %s", path, sheet)
	}
	return mines, nil
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the yearly production tables to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.loadApp(cmd.Context())
			if err != nil {
				return err
			}
			ds := app.Dataset()
			if err := excel.SaveProduction(args[0], ds.NaturalYearly, ds.LabYearly); err != nil {
				return fmt.Errorf("export %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload a static snapshot of the dashboard page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.ValidatePublish(); err != nil {
				return err
			}
			ctx := cmd.Context()

			app, err := c.loadApp(ctx)
			if err != nil {
				return err
			}
			client, err := publish.NewClient(c.cfg.Publish)
			if err != nil {
				return err
			}
			key, err := publish.New(client, c.cfg.Publish, c.logger).Publish(ctx, app, c.cfg.Dashboard.Title)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published s3://%s/%s\n", c.cfg.Publish.Bucket, key)
			return nil
		},
	}
}

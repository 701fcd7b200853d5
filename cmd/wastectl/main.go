// wastectl runs waste predictions and store maintenance from the command line.
//
// Usage:
//
//	wastectl predict --attendance 150 --menu-type nonveg --food-quantity 50
//	wastectl table
//	wastectl history
//	wastectl migrate
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/yanqian/food-waste-predictor/internal/bootstrap"
	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/infra/config"
	"github.com/yanqian/food-waste-predictor/internal/infra/recordstore"
	"github.com/yanqian/food-waste-predictor/pkg/logger"
	"github.com/yanqian/food-waste-predictor/pkg/metrics"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "wastectl",
		Usage:   "Predict canteen food waste and manage the daily record store",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			predictCommand(),
			tableCommand(),
			historyCommand(),
			migrateCommand(),
		},
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	return logger.NewWithWriter(os.Stderr, c.String("log-level"))
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Predict waste for a single day and print the JSON response",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "attendance", Aliases: []string{"a"}, Usage: "Expected attendance (default 100)"},
			&cli.StringFlag{Name: "menu-type", Aliases: []string{"m"}, Usage: "Menu type: veg, nonveg or special (default veg)"},
			&cli.StringFlag{Name: "food-quantity", Aliases: []string{"q"}, Usage: "Prepared food in kg (default 30% of attendance)"},
			&cli.BoolFlag{Name: "ai", Usage: "Enrich the response with AI suggestions when an API key is configured"},
		},
		Action: runPredict,
	}
}

func runPredict(c *cli.Context) error {
	log := newLogger(c)

	var raw prediction.RawInput
	if c.IsSet("attendance") {
		raw.Attendance = c.String("attendance")
	}
	if c.IsSet("menu-type") {
		raw.MenuType = c.String("menu-type")
	}
	if c.IsSet("food-quantity") {
		raw.FoodQuantity = c.String("food-quantity")
	}

	table := prediction.DefaultReferenceTable()
	var augmenter prediction.Augmenter = prediction.NoAugmenter{}
	if c.Bool("ai") {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Reference.Source == config.ReferenceStore {
			store := bootstrap.NewRecordStore(cfg, log)
			defer store.Close()
			table = bootstrap.NewReferenceTable(cfg, store, log)
		}
		registry := metrics.NewRegistry()
		cache := bootstrap.NewAdviceCache(cfg, log)
		if closer, ok := cache.(interface{ Close() }); ok {
			defer closer.Close()
		}
		augmenter = bootstrap.NewAugmenter(
			bootstrap.NewAdvisorConfig(cfg),
			bootstrap.NewChatClient(cfg, log),
			cache,
			bootstrap.NewTokenCounter(cfg, log),
			registry,
			log,
		)
	}

	svc := prediction.NewService(table, augmenter, nil, log)
	resp := svc.Predict(c.Context, raw)
	return writeJSON(c.App.Writer, resp)
}

func tableCommand() *cli.Command {
	return &cli.Command{
		Name:  "table",
		Usage: "Print the built-in reference table",
		Action: func(c *cli.Context) error {
			return writeRows(c.App.Writer, prediction.DefaultReferenceTable().Rows())
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print the valid rows held by the configured record store",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store := bootstrap.NewRecordStore(cfg, newLogger(c))
			defer store.Close()

			history, err := store.ReadHistory(c.Context)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			valid, rejected := prediction.NewReferenceTable(history)
			if rejected > 0 {
				fmt.Fprintf(c.App.ErrWriter, "skipped %d invalid rows\n", rejected)
			}
			return writeRows(c.App.Writer, valid.Rows())
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations for the postgres or sqlite store",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			db, dialect, err := bootstrap.OpenSQL(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := recordstore.Migrate(ctx, db, dialect); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "migrations applied (%s)\n", dialect)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRows(w io.Writer, rows []prediction.HistoricalRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTENDANCE\tMENU\tWASTE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Attendance, row.MenuType, row.WasteLevel)
	}
	return tw.Flush()
}

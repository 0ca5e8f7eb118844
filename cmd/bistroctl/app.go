package main

import (
	"database/sql"
	"fmt"
	"io"
	"sort"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/infrastructure/logger"
	"bistro/internal/infrastructure/mysql"
	menurepo "bistro/internal/menu/repository"
	menuservice "bistro/internal/menu/service"
	statsrepo "bistro/internal/stats/repository"
	statsservice "bistro/internal/stats/service"
)

// deps is what every command needs once configuration is loaded.
type deps struct {
	db     *sql.DB
	logger *zap.Logger
}

func (d *deps) Close() {
	_ = d.logger.Sync()
	d.db.Close()
}

type connectFunc func(c *cli.Context) (*deps, error)

func connect(c *cli.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		return nil, err
	}

	return &deps{db: db, logger: zapLogger}, nil
}

func newApp(out io.Writer, open connectFunc) *cli.App {
	withDeps := func(action func(c *cli.Context, d *deps) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			d, err := open(c)
			if err != nil {
				return err
			}
			defer d.Close()
			return action(c, d)
		}
	}

	return &cli.App{
		Name:      "bistroctl",
		Usage:     "operate the bistro ordering database",
		Version:   version,
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "override LOG_LEVEL",
				EnvVars: []string{"BISTROCTL_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply or roll back schema migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: withDeps(func(c *cli.Context, d *deps) error {
							if err := mysql.MigrateUp(d.db); err != nil {
								return err
							}
							return printVersion(out, d.db)
						}),
					},
					{
						Name:  "down",
						Usage: "roll back the last N migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
						},
						Before: func(c *cli.Context) error {
							if c.Int("steps") <= 0 {
								return fmt.Errorf("--steps must be positive")
							}
							return nil
						},
						Action: withDeps(func(c *cli.Context, d *deps) error {
							if err := mysql.MigrateDown(d.db, c.Int("steps")); err != nil {
								return err
							}
							return printVersion(out, d.db)
						}),
					},
					{
						Name:  "version",
						Usage: "print the current schema version",
						Action: withDeps(func(c *cli.Context, d *deps) error {
							return printVersion(out, d.db)
						}),
					},
				},
			},
			{
				Name:  "seed",
				Usage: "insert the default menu into an empty catalog",
				Action: withDeps(func(c *cli.Context, d *deps) error {
					svc := menuservice.NewCatalogService(d.db, menurepo.NewMySQLMenuRepository(d.db), d.logger)
					items, err := svc.InitializeDefaults(c.Context)
					if err != nil {
						return err
					}
					for _, item := range items {
						fmt.Fprintf(out, "%d\t%s\t%s\t%d\n", item.ID, item.Name, item.Cuisine, item.Price)
					}
					fmt.Fprintf(out, "seeded %d menu items\n", len(items))
					return nil
				}),
			},
			{
				Name:  "stats",
				Usage: "print restaurant totals and orders per status",
				Action: withDeps(func(c *cli.Context, d *deps) error {
					svc := statsservice.NewStatsService(statsrepo.NewMySQLStatsRepository(d.db), d.logger)

					totals, err := svc.GetStats(c.Context)
					if err != nil {
						return err
					}
					byStatus, err := svc.GetOrderStatsByStatus(c.Context)
					if err != nil {
						return err
					}

					fmt.Fprintf(out, "menu items\t%d\n", totals.TotalMenuItems)
					fmt.Fprintf(out, "orders\t%d\n", totals.TotalOrders)
					fmt.Fprintf(out, "revenue\t%d\n", totals.TotalRevenue)

					statuses := make([]string, 0, len(byStatus))
					for s := range byStatus {
						statuses = append(statuses, s)
					}
					sort.Strings(statuses)
					for _, s := range statuses {
						fmt.Fprintf(out, "orders %s\t%d\n", s, byStatus[s])
					}
					return nil
				}),
			},
		},
	}
}

func printVersion(out io.Writer, db *sql.DB) error {
	v, dirty, err := mysql.SchemaVersion(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version %d (dirty: %t)\n", v, dirty)
	return nil
}

package main

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/dayboard/internal/config"
	"github.com/dayboard/internal/datekey"
	"github.com/dayboard/internal/db"
	"github.com/dayboard/internal/router"
	"github.com/dayboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dayboard",
		Short:        "Habits, tasks and a reorderable day calendar over HTTP.",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newWeekCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var addr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dbPath)
			if err != nil {
				return err
			}
			if strings.TrimSpace(addr) != "" {
				cfg.ListenAddr = strings.TrimSpace(addr)
			}

			gin.SetMode(cfg.GinMode)

			// 初始化数据库
			if err := db.Init(cfg.DatabasePath); err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}

			r := router.SetupRouter(db.DB, cfg)
			log.Printf("[server] listening on %s (db=%s)", cfg.ListenAddr, cfg.DatabasePath)
			return r.Run(cfg.ListenAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides LISTEN_ADDR.")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path, overrides DATABASE_PATH.")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dbPath)
			if err != nil {
				return err
			}
			if err := db.Init(cfg.DatabasePath); err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", cfg.DatabasePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path, overrides DATABASE_PATH.")
	return cmd
}

func newWeekCmd() *cobra.Command {
	var dbPath, habitID, visitor, date string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print a habit's progress for the week containing --date.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dbPath)
			if err != nil {
				return err
			}

			day := time.Now()
			if strings.TrimSpace(date) != "" {
				day, err = datekey.ParseLocalDayKey(date, nil)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}

			if err := db.Init(cfg.DatabasePath); err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}

			habits := service.NewHabitService(db.DB).WithAdoptionThreshold(cfg.AdoptionThreshold)
			progress := service.NewProgressService(habits, service.NewCompletionService(db.DB))
			return printWeek(cmd.OutOrStdout(), progress, visitor, habitID, day)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path, overrides DATABASE_PATH.")
	cmd.Flags().StringVar(&habitID, "habit", "", "Habit ID.")
	cmd.Flags().StringVar(&visitor, "visitor", "", "Visitor ID that owns the habit.")
	cmd.Flags().StringVar(&date, "date", "", "Any day of the week (YYYY-MM-DD), defaults to today.")
	_ = cmd.MarkFlagRequired("habit")
	_ = cmd.MarkFlagRequired("visitor")
	return cmd
}

func loadConfig(dbPath string) (config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.AppConfig{}, err
	}
	if strings.TrimSpace(dbPath) != "" {
		cfg.DatabasePath = strings.TrimSpace(dbPath)
	}
	return cfg, nil
}

func printWeek(out io.Writer, progress *service.ProgressService, visitor, habitID string, day time.Time) error {
	snap, err := progress.Snapshot(visitor, habitID, day)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%d/%s)\n", snap.Habit.Title, snap.Habit.TargetValue, snap.Habit.TargetUnit)
	for _, d := range snap.Week.Days {
		summary, err := progress.DaySummary(visitor, habitID, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s %s  %d/%d\n", datekey.LocalDayKey(d), d.Weekday().String()[:3], summary.Completed, summary.Target)
	}
	fmt.Fprintf(out, "week: %d/%d (%.2f%%)\n", snap.Week.Completed, snap.Week.Target, snap.Week.ProgressPct)
	fmt.Fprintf(out, "streak: %d\n", snap.Habit.Streak)
	return nil
}

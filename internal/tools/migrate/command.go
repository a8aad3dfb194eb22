package migrate

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/hashebooks/hashebooks-backend/internal/config"
	"github.com/hashebooks/hashebooks-backend/internal/database"
	"github.com/hashebooks/hashebooks-backend/internal/di"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/tools/common"
	"github.com/hashebooks/hashebooks-backend/internal/tools/ui"
)

const toolName = "migrate"

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newPlanCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations and bootstrap roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "up", func(ctx context.Context) ([]string, error) {
				if err := common.LoadEnvFile(opts.envFile); err != nil {
					return nil, err
				}
				runner, err := di.InitializeMigrationRunner()
				if err != nil {
					return nil, err
				}
				report, err := runner.Run()
				if err != nil {
					return nil, err
				}
				details := []string{"schema migration applied"}
				switch {
				case report.BootstrapEmail == "":
					details = append(details, "bootstrap admin: not configured")
				case !report.UserFound:
					details = append(details, "bootstrap admin: no account for "+report.BootstrapEmail)
				default:
					details = append(details, fmt.Sprintf("bootstrap admin: %s (%d new role grants)", report.BootstrapEmail, report.GrantedRoles))
				}
				return details, nil
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report which tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "status", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				sqlDB, _ := db.DB()
				defer func() { _ = sqlDB.Close() }()
				if err := sqlDB.PingContext(ctx); err != nil {
					return nil, fmt.Errorf("db ping: %w", err)
				}
				return statusDetails(db)
			})
		},
	}
}

func newPlanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show migration plan (dry-run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "plan", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				sqlDB, _ := db.DB()
				defer func() { _ = sqlDB.Close() }()
				if err := sqlDB.PingContext(ctx); err != nil {
					return nil, fmt.Errorf("db ping: %w", err)
				}
				return planDetails(db)
			})
		},
	}
}

func statusDetails(db *gorm.DB) ([]string, error) {
	status, err := database.MigrationStatus(db)
	if err != nil {
		return nil, err
	}
	details := make([]string, 0, len(status))
	for _, table := range sortedTables(status) {
		state := "missing"
		if status[table] {
			state = "present"
		}
		details = append(details, table+": "+state)
	}
	return details, nil
}

func planDetails(db *gorm.DB) ([]string, error) {
	status, err := database.MigrationStatus(db)
	if err != nil {
		return nil, err
	}
	var details []string
	for _, table := range sortedTables(status) {
		if status[table] {
			details = append(details, "would reconcile columns and indexes: "+table)
		} else {
			details = append(details, "would create table: "+table)
		}
	}
	return append(details, "no mutation executed in plan mode"), nil
}

func sortedTables(status map[string]bool) []string {
	tables := make([]string, 0, len(status))
	for t := range status {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

func execute(opts *options, command string, fn func(context.Context) ([]string, error)) error {
	title := toolName + " " + command
	start := time.Now()
	details, err := run(opts, title, fn)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordToolCommandRun(context.Background(), toolName, command, outcome)
	observability.RecordToolCommandDuration(context.Background(), toolName, command, outcome, time.Since(start))
	if opts.ci {
		common.PrintCIResult(err == nil, title, details, err)
	}
	if err != nil {
		os.Exit(3)
	}
	return nil
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		defer cancel()
		return fn(ctx)
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/hashebooks/hashebooks-backend/internal/config"
	"github.com/hashebooks/hashebooks-backend/internal/database"
	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/repository"
	"github.com/hashebooks/hashebooks-backend/internal/security"
	"github.com/hashebooks/hashebooks-backend/internal/service"
	"github.com/hashebooks/hashebooks-backend/internal/tools/common"
	"github.com/hashebooks/hashebooks-backend/internal/tools/ui"
)

const toolName = "seed"

type options struct {
	envFile             string
	bootstrapAdminEmail string
	ci                  bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed and account tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.bootstrapAdminEmail, "bootstrap-admin-email", "", "override bootstrap admin email")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(
		newApplyCommand(opts),
		newDryRunCommand(opts),
		newCreateUserCommand(opts),
		newGrantAdminCommand(opts),
		newIssueTokenCommand(opts),
	)
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Grant bootstrap admin roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				report, err := database.SeedSync(db, opts.bootstrapEmail(cfg))
				if err != nil {
					return nil, err
				}
				return reportDetails(report), nil
			})
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "dry-run", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				return dryRunDetails(ctx, repository.NewUserRepository(db), repository.NewRoleRepository(db), opts.bootstrapEmail(cfg))
			})
		},
	}
}

func newCreateUserCommand(opts *options) *cobra.Command {
	var in service.ProvisionUserInput
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account with a local password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "create-user", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				user, err := provisioning(db).CreateUser(ctx, in)
				if err != nil {
					return nil, err
				}
				details := []string{"created user " + user.Email, "id: " + user.ID}
				if in.Admin {
					details = append(details, "granted role: admin")
				}
				return details, nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "local password")
	cmd.Flags().StringVar(&in.DisplayName, "display-name", "", "profile display name")
	cmd.Flags().BoolVar(&in.Admin, "admin", false, "also grant the admin role")
	return cmd
}

func newGrantAdminCommand(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "grant-admin",
		Short: "Grant the admin role to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "grant-admin", func(ctx context.Context) ([]string, error) {
				if strings.TrimSpace(email) == "" {
					return nil, errors.New("email is required")
				}
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				user, err := provisioning(db).GrantRole(ctx, email, domain.RoleAdmin)
				if err != nil {
					return nil, err
				}
				return []string{fmt.Sprintf("admin role granted: %s (%s)", user.Email, user.ID)}, nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newIssueTokenCommand(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Print a signed access token for an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "issue-token", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				jwt := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret, cfg.JWTAccessTTL)
				token, err := issueToken(ctx, repository.NewUserRepository(db), jwt, email)
				if err != nil {
					return nil, err
				}
				return []string{"expires in: " + cfg.JWTAccessTTL.String(), "token: " + token}, nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (o *options) bootstrapEmail(cfg *config.Config) string {
	if o.bootstrapAdminEmail != "" {
		return o.bootstrapAdminEmail
	}
	return cfg.BootstrapAdminEmail
}

func provisioning(db *gorm.DB) *service.UserProvisioningService {
	return service.NewUserProvisioningService(
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		repository.NewRoleRepository(db),
		repository.NewLocalCredentialRepository(db),
	)
}

func reportDetails(report *database.SeedReport) []string {
	switch {
	case report.BootstrapEmail == "":
		return []string{"no bootstrap admin email configured", "nothing to do"}
	case !report.UserFound:
		return []string{"no account for " + report.BootstrapEmail, "nothing to do"}
	default:
		return []string{
			"bootstrap admin: " + report.BootstrapEmail,
			fmt.Sprintf("new role grants: %d", report.GrantedRoles),
		}
	}
}

func dryRunDetails(ctx context.Context, users repository.UserRepository, roles repository.RoleRepository, email string) ([]string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return []string{"no bootstrap admin email configured", "would do nothing"}, nil
	}
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return []string{"no account for " + email, "would do nothing"}, nil
		}
		return nil, err
	}
	current, err := roles.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	held := make(map[domain.AppRole]bool, len(current))
	names := make([]string, 0, len(current))
	for _, role := range current {
		held[role] = true
		names = append(names, string(role))
	}
	var missing []string
	for _, role := range []domain.AppRole{domain.RoleUser, domain.RoleAdmin} {
		if !held[role] {
			missing = append(missing, string(role))
		}
	}
	details := []string{fmt.Sprintf("account %s (%s) holds roles: %s", user.Email, user.ID, roleList(names))}
	if len(missing) == 0 {
		return append(details, "would do nothing"), nil
	}
	return append(details, "would grant roles: "+strings.Join(missing, ", ")), nil
}

func roleList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func issueToken(ctx context.Context, users repository.UserRepository, jwt *security.JWTManager, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("email is required")
	}
	user, err := users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", err
	}
	return jwt.SignAccessToken(user.ID, user.Email)
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
		return fn(context.Background())
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

// Command washctl is the operator CLI: user listing and export, membership and
// account status changes, and admin grants.
package main

import (
	"fmt"
	"os"

	"suryawash/internal/config"
	"suryawash/internal/database"
	"suryawash/internal/identity"
	"suryawash/internal/modules/admin"
	"suryawash/internal/pkg/cache"
	jwtsvc "suryawash/internal/pkg/jwt"
	"suryawash/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// cliApp holds what the commands share. admin is nil until the root command connects.
type cliApp struct {
	dsn   string
	admin *admin.Service
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(&cliApp{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(app *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "washctl",
		Short:         "Surya Motors operator tool",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.admin != nil {
				return nil
			}
			return app.connect()
		},
	}
	root.PersistentFlags().StringVar(&app.dsn, "db", "", "database URL (defaults to DATABASE_URL)")

	root.AddCommand(newUsersCmd(app))
	root.AddCommand(newAdminsCmd(app))
	return root
}

func (a *cliApp) connect() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dsn == "" {
		a.dsn = cfg.DatabaseURL
	}
	db, err := database.Connect(a.dsn)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db, repository.Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.admin = newAdminService(cfg, db)
	return nil
}

// newAdminService builds the admin workflows with a provider that can revoke sessions.
func newAdminService(cfg *config.Config, db *gorm.DB) *admin.Service {
	provider := identity.NewLocalProvider(
		repository.NewAccountRepository(db),
		repository.NewSessionRepository(db),
		jwtsvc.New(cfg.JWTSecret, cfg.SessionTTL),
		cache.NewMemory(),
		identity.NewLogSender(nil),
		identity.Config{ChallengeSecret: cfg.ChallengeSecret, ChallengeTTL: cfg.ChallengeTTL, OTPTTL: cfg.OTPTTL},
		nil,
	)
	quiet := func(string, ...interface{}) {}
	return admin.NewService(repository.NewProfileRepository(db), repository.NewAdminRepository(db), provider, quiet)
}

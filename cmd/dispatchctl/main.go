package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	directoryapp "github.com/fieldops/dispatch_services/internal/directory_service/app"
	directorypg "github.com/fieldops/dispatch_services/internal/directory_service/repository/postgres"
	messagingapp "github.com/fieldops/dispatch_services/internal/messaging_service/app"
	"github.com/fieldops/dispatch_services/internal/messaging_service/provider"
	"github.com/fieldops/dispatch_services/internal/platform/config"
	"github.com/fieldops/dispatch_services/internal/platform/database"
	"github.com/fieldops/dispatch_services/internal/platform/logger"
	"github.com/fieldops/dispatch_services/internal/platform/phone"
	"github.com/fieldops/dispatch_services/internal/public_api_service/middleware"
	servicecallapp "github.com/fieldops/dispatch_services/internal/servicecall_service/app"
	servicecallpg "github.com/fieldops/dispatch_services/internal/servicecall_service/repository/postgres"
)

const cliName = "dispatchctl"

// env is what every subcommand needs; it is filled in by the root command's PersistentPreRunE.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   cliName,
		Short: "Operator tooling for the dispatch service",
		Long: `dispatchctl runs one-off operator tasks against the dispatch database:
schema migrations, bulk professional imports, console tokens and ad-hoc notifications.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cliName)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			e.cfg = cfg
			e.logger = logger.NewWithWriter(os.Stderr, cfg.LogLevel, cliName)
			return nil
		},
	}

	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(importCSVCmd(e))
	rootCmd.AddCommand(tokenCmd(e))
	rootCmd.AddCommand(notifyCmd(e))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.ApplyMigrations(e.cfg.PostgresDSN, e.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func importCSVCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import-csv [file]",
		Short: "Bulk-load professionals from a CSV file",
		Long: `The file needs a header row followed by rows of
name,phone,profession,available,location,area. Rows whose phone is already registered are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			pool, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			dir := e.directory(pool)
			res, err := dir.ImportCSV(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d professionals, skipped %d rows\n", res.Added, res.Skipped)
			for _, p := range res.Details {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d\t%s\n", p.ID, p.Name)
			}
			return nil
		},
	}
}

func tokenCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator console token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if e.cfg.OperatorJWTSecret == "" {
				return fmt.Errorf("OPERATOR_JWT_SECRET is not set; the console runs without auth")
			}
			if ttl <= 0 {
				ttl = e.cfg.OperatorTokenTTL()
			}
			token, err := middleware.IssueOperatorToken(e.cfg.OperatorJWTSecret, subject, uuid.NewString(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("subject", "", "operator name recorded in the token")
	cmd.Flags().Duration("ttl", 0, "token lifetime (defaults to OPERATOR_TOKEN_TTL_HOURS)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func notifyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a job description to matching available professionals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profession, _ := cmd.Flags().GetString("profession")
			description, _ := cmd.Flags().GetString("description")
			locations, _ := cmd.Flags().GetStringSlice("location")
			serviceCallID, _ := cmd.Flags().GetInt64("service-call")

			pool, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			dir := e.directory(pool)
			calls := servicecallapp.NewApplication(
				servicecallpg.NewPgServiceCallRepository(pool, e.logger),
				servicecallpg.NewPgLifecycleRepository(pool, e.logger),
				nil,
				e.logger,
			)
			dispatcher := messagingapp.NewDispatcher(dir, calls, e.sender(), e.cfg.MessagingTimeout(), e.logger)

			if serviceCallID > 0 {
				res, err := dispatcher.NotifyServiceCall(cmd.Context(), serviceCallID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "matched %d, sent %d\n", res.Matched, res.NotificationsSent)
				return nil
			}

			if profession == "" || description == "" {
				return fmt.Errorf("--profession and --description are required unless --service-call is given")
			}
			sent, err := dispatcher.Notify(cmd.Context(), profession, description, locations)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d\n", sent)
			return nil
		},
	}
	cmd.Flags().String("profession", "", "profession to notify")
	cmd.Flags().String("description", "", "message body")
	cmd.Flags().StringSlice("location", nil, "restrict to these locations (repeatable)")
	cmd.Flags().Int64("service-call", 0, "notify for an existing service call instead")
	return cmd
}

func (e *env) pool(ctx context.Context) (*pgxpool.Pool, error) {
	if e.cfg.StoreDriver != config.StoreDriverPostgres {
		return nil, fmt.Errorf("%s needs STORE_DRIVER=postgres", cliName)
	}
	return database.NewDBPool(ctx, e.cfg.PostgresDSN, e.logger)
}

func (e *env) directory(pool *pgxpool.Pool) *directoryapp.Application {
	return directoryapp.NewApplication(
		directorypg.NewPgProfessionRepository(pool, e.logger),
		directorypg.NewPgProfessionalRepository(pool, e.logger),
		phone.NewNormalizer(e.cfg.PhoneDefaultRegion),
		e.logger,
	)
}

func (e *env) sender() provider.Sender {
	if e.cfg.MessagingAPIURL == "" {
		e.logger.Warn("MESSAGING_API_URL not set, messages are only logged")
		return provider.NewMockProvider(e.logger)
	}
	return provider.NewHTTPProvider(e.logger, e.cfg.MessagingAPIURL, e.cfg.MessagingAPIToken,
		&http.Client{Timeout: e.cfg.MessagingTimeout()},
		provider.NewLimiter(e.cfg.MessagingRatePerSecond, e.cfg.MessagingRateBurst))
}

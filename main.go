package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cruiseops/companies"
	"cruiseops/config"
	"cruiseops/globals"
	"cruiseops/imports"
	"cruiseops/logging"
	"cruiseops/middleware"
	"cruiseops/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "cruiseops",
	Short:         "Cruise back-office API and admin tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())
		return a.serve(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create control plane and tenant indexes and seed price categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		if err := a.mongo.EnsureControlIndexes(ctx); err != nil {
			return fmt.Errorf("control indexes: %w", err)
		}
		tenants, err := a.resolver.Tenants(ctx)
		if err != nil {
			return err
		}
		for _, t := range tenants {
			if err := a.mongo.EnsureTenantIndexes(ctx, t.TenantDB); err != nil {
				return fmt.Errorf("tenant %s indexes: %w", t.TenantDB, err)
			}
			if _, err := a.pricing.EnsureDefaultCategories(ctx, t.TenantDB); err != nil {
				return fmt.Errorf("tenant %s price categories: %w", t.TenantDB, err)
			}
			logger.Info("tenant migrated", zap.String("tenant", t.TenantDB))
		}
		return nil
	},
}

var seedCompany companies.CreateInput

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled translations and optionally create a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		n, err := a.translations.Seed(ctx)
		if err != nil {
			return err
		}
		logger.Info("translations seeded", zap.Int("rows", n))

		if seedCompany.Code == "" {
			return nil
		}
		if seedCompany.Name == "" {
			seedCompany.Name = seedCompany.Code
		}
		c, err := a.companies.Create(ctx, seedCompany)
		if errors.Is(err, utils.ErrConflict) {
			logger.Info("company already exists", zap.String("code", seedCompany.Code))
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := a.pricing.EnsureDefaultCategories(ctx, c.TenantDB); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "company %s -> %s\n", c.ID, c.TenantDB)
		return nil
	},
}

var (
	tokenSub     string
	tokenRole    string
	tokenCompany string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := middleware.NewAuth(cfg.JWTSecret).IssueToken(tokenSub, utils.LowerCode(tokenRole), tokenCompany, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

var (
	importCompany string
	importFile    string
	importDryRun  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import itineraries, cabin categories and cabins from an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		tenant, err := a.resolver.TenantDB(ctx, importCompany)
		if err != nil {
			return err
		}
		res, err := a.imports.Import(ctx, tenant, f, importDryRun)
		out := json.NewEncoder(cmd.OutOrStdout())
		out.SetIndent("", "  ")
		var verr *imports.ValidationError
		if errors.As(err, &verr) {
			_ = out.Encode(verr.Issues)
			return err
		}
		if err != nil {
			return err
		}
		return out.Encode(res)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	seedCmd.Flags().StringVar(&seedCompany.Code, "company-code", "", "create a company with this code")
	seedCmd.Flags().StringVar(&seedCompany.Name, "company-name", "", "name of the created company")
	seedCmd.Flags().StringVar(&seedCompany.ID, "company-id", "", "id of the created company (generated when empty)")

	tokenCmd.Flags().StringVar(&tokenSub, "sub", "dev-user", "subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", globals.RoleAdmin, "guest|agent|staff|admin")
	tokenCmd.Flags().StringVar(&tokenCompany, "company", "", "pin the token to a company id")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")

	importCmd.Flags().StringVar(&importCompany, "company", "", "company id")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the .xlsx workbook")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate without writing")
	_ = importCmd.MarkFlagRequired("company")
	_ = importCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokenCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

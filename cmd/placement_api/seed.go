package main

import (
	"fmt"
	"os"

	"github.com/jonathan/campus-placement/internal/accounts"
	"github.com/jonathan/campus-placement/internal/config"
	"github.com/jonathan/campus-placement/internal/notify"
	"github.com/spf13/cobra"
)

var (
	seedName     string
	seedEmail    string
	seedPassword string
)

var seedTPOCmd = &cobra.Command{
	Use:   "seed-tpo",
	Short: "Create the placement office account",
	Long: `Create the active TPO account if no account uses its email yet.
Flags override TPO_NAME, TPO_EMAIL and TPO_PASSWORD.`,
	RunE: runSeedTPO,
}

func init() {
	seedTPOCmd.Flags().StringVar(&seedName, "name", "", "Display name")
	seedTPOCmd.Flags().StringVar(&seedEmail, "email", "", "Login email")
	seedTPOCmd.Flags().StringVar(&seedPassword, "password", "", "Login password")
	rootCmd.AddCommand(seedTPOCmd)
}

func runSeedTPO(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	name, email, password := cfg.TPO.Name, cfg.TPO.Email, cfg.TPO.Password
	if seedName != "" {
		name = seedName
	}
	if seedEmail != "" {
		email = seedEmail
	}
	if seedPassword != "" {
		password = seedPassword
	}

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	st, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(cmd.Context()); err != nil {
		return err
	}

	svc := accounts.NewService(st, passwords, notify.New(st, notify.WithLogger(logger)), accounts.WithLogger(logger))
	tpo, created, err := svc.SeedTPO(cmd.Context(), name, email, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created TPO account %s (%s)\n", tpo.Email, tpo.ID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "TPO account %s already exists (%s)\n", tpo.Email, tpo.ID)
	}
	return nil
}

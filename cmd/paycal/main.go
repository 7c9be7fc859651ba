package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/paycal/internal/cli"
	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paycal",
		Short: "📅 Payday and bill calendar",
		Long: `paycal tracks your accounts, paydays and recurring bills, and tells you
how much you can spend per day until the next paycheck.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/paycal/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(migrateCmd())
	root.AddCommand(accountsCmd())
	root.AddCommand(billsCmd())
	root.AddCommand(paydayCmd())
	root.AddCommand(budgetCmd())
	root.AddCommand(calendarCmd())
	root.AddCommand(importOFXCmd())
	root.AddCommand(versionCmd())

	return root
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("received interrupt signal, shutting down")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
			slog.Debug("command failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(fmt.Sprintf("%s/.config/paycal", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())

	// PAYCAL_DATABASE_PATH, PAYCAL_CALENDAR_TIMEZONE, ...
	viper.SetEnvPrefix("PAYCAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paycal %s\n", version)
		},
	}
}

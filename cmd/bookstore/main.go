// Command bookstore is the bookstore client: browse the catalog, keep a
// cart, check out and run the admin console from a terminal, or serve the
// same client to browsers with `bookstore serve`.
//
//	bookstore login --email reader@example.com --password ...
//	bookstore books
//	bookstore cart add 7
//	bookstore checkout --provider MANUAL --proof s3://payments/upi.png
//	bookstore orders
//
// The signed-in user, the cart and the backend session cookie persist in the
// state store (STATE_DRIVER) between runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bookstore/app/services"
	"github.com/shashiranjanraj/bookstore/config"
	"github.com/shashiranjanraj/bookstore/pkg/app"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
)

var (
	verbose bool
	apiURL  string

	store  storage.Store
	client *app.App

	closeLogSink = func() {}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	closeLogSink()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bookstore",
	Short:         "Bookstore client",
	Long:          "Browse books, manage your cart, check out and administer the store.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return boot()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "backend API base URL (default from API_BASE_URL)")

	// Account
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(loginGoogleCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// Shopping
	rootCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(addressesCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)

	// Admin
	rootCmd.AddCommand(adminCmd)

	// Storefront
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
}

// boot loads configuration, sets up logging and opens the state store and
// the client over it.
func boot() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if apiURL != "" {
		config.Set("API_BASE_URL", apiURL)
	}

	logger.Setup(os.Stderr)
	if verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	if uri := config.LogMongoURI(); uri != "" {
		closeFn, err := logger.AttachMongo(uri)
		if err != nil {
			logger.Warn("log sink unavailable", "error", err)
		} else {
			closeLogSink = closeFn
		}
	}

	var err error
	store, err = storage.Open(config.StateDriver())
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	client, err = app.New(store, app.Options{})
	return err
}

// userError turns a service error into the message the user sees. The
// underlying cause goes to the debug log.
func userError(err error) error {
	if err == nil {
		return nil
	}
	logger.Debug("command failed", "error", err)
	msg := services.Message(err)
	if msg == "" {
		msg = err.Error()
	}
	return errors.New(msg)
}

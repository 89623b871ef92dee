package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bookstore/config"
	"github.com/shashiranjanraj/bookstore/internal/kernel"
	"github.com/shashiranjanraj/bookstore/internal/server"
	"github.com/shashiranjanraj/bookstore/pkg/app"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
)

var serveAddr string

// bookstore serve: the storefront for browsers. Visitor state lives in the
// configured state store; use redis or sql to share it between instances.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = ":" + config.AppPort()
		}
		return server.Start(cmd.Context(), addr, store)
	},
}

// bookstore route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List the storefront's named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		k := kernel.NewHTTPKernel(kernel.Config{Store: storage.NewMemory(), App: app.Options{}})

		w := table(os.Stdout)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :APP_PORT)")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/openshelf/shelfd/cmd/books"
	"github.com/openshelf/shelfd/cmd/catalog"
	"github.com/openshelf/shelfd/cmd/notifications"
	"github.com/openshelf/shelfd/cmd/papers"
	"github.com/openshelf/shelfd/cmd/serve"
	"github.com/openshelf/shelfd/cmd/users"
	"github.com/openshelf/shelfd/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "shelfd",
		Short: "digital library server and client",
		Long: fmt.Sprintf(`shelfd (v%s)

A digital library for books and question papers, with a reactive
snapshot store, account management and AI assisted summaries.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of shelfd",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shelfd v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(books.BookCommands)
	RootCmd.AddCommand(papers.PaperCommands)
	RootCmd.AddCommand(users.UserCommands)
	RootCmd.AddCommand(catalog.CatalogCommands)
	RootCmd.AddCommand(notifications.NotificationCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

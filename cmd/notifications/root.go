package notifications

import (
	"fmt"

	"github.com/openshelf/shelfd/cmd/util"
	"github.com/openshelf/shelfd/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcLibrary *client.LibraryClient

	// NotificationCommands represents the notifications command group
	NotificationCommands = &cobra.Command{
		Use:               "notifications",
		Short:             "Read the notification feed",
		PersistentPreRunE: setupClient,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, err := rpcLibrary.ListNotifications()
			if err != nil {
				return err
			}
			for _, n := range feed {
				marker := " "
				if !n.Read {
					marker = "*"
				}
				fmt.Printf("%s %s  [%s] %s - %s\n", marker, n.ID, n.Type, n.Title, n.Description)
			}
			return nil
		},
	}
	readCmd = &cobra.Command{
		Use:   "read [id]",
		Short: "Marks a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcLibrary.MarkNotificationRead(args[0]); err != nil {
				return err
			}
			fmt.Println("marked as read")
			return nil
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the notifications command
	util.SetupRPCClientFlags(NotificationCommands)

	// Add subcommands
	NotificationCommands.AddCommand(listCmd)
	NotificationCommands.AddCommand(readCmd)
}

// setupClient initializes the RPC library client
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the library client
	rpcLibrary, err = client.NewLibraryClient(*config, t, s)
	return err
}

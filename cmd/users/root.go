package users

import (
	"github.com/openshelf/shelfd/cmd/util"
	"github.com/openshelf/shelfd/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcLibrary *client.LibraryClient
	rpcAuth    *client.AuthClient

	// UserCommands represents the users command group
	UserCommands = &cobra.Command{
		Use:               "users",
		Short:             "Register, log in and manage accounts",
		PersistentPreRunE: setupClients,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the users command
	util.SetupRPCClientFlags(UserCommands)

	// Add subcommands
	UserCommands.AddCommand(registerCmd)
	UserCommands.AddCommand(loginCmd)
	UserCommands.AddCommand(logoutCmd)
	UserCommands.AddCommand(whoamiCmd)
	UserCommands.AddCommand(resetCmd)
}

// setupClients initializes the RPC library and auth clients
func setupClients(cmd *cobra.Command, _ []string) error {
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
	if err != nil {
		return err
	}

	// The auth client maintains its own connections
	authTransport, err := util.GetTransport()
	if err != nil {
		return err
	}
	rpcAuth, err = client.NewAuthClient(*config, authTransport, s)
	return err
}

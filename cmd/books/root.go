package books

import (
	"github.com/openshelf/shelfd/cmd/util"
	"github.com/openshelf/shelfd/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcLibrary *client.LibraryClient
	rpcAI      *client.AIClient

	// BookCommands represents the books command group
	BookCommands = &cobra.Command{
		Use:               "books",
		Short:             "Browse and manage the book collection",
		PersistentPreRunE: setupClients,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the books command
	util.SetupRPCClientFlags(BookCommands)

	// Add subcommands
	BookCommands.AddCommand(addCmd)
	BookCommands.AddCommand(listCmd)
	BookCommands.AddCommand(getCmd)
	BookCommands.AddCommand(searchCmd)
	BookCommands.AddCommand(delCmd)
	BookCommands.AddCommand(remarkCmd)
	BookCommands.AddCommand(likeCmd)
	BookCommands.AddCommand(dislikeCmd)
	BookCommands.AddCommand(summarizeCmd)
	BookCommands.AddCommand(askCmd)
}

// setupClients initializes the RPC library and ai clients
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

	// The ai client maintains its own connections
	aiTransport, err := util.GetTransport()
	if err != nil {
		return err
	}
	rpcAI, err = client.NewAIClient(*config, aiTransport, s)
	return err
}

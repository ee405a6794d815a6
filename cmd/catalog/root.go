package catalog

import (
	"fmt"

	"github.com/openshelf/shelfd/cmd/util"
	"github.com/openshelf/shelfd/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcLibrary *client.LibraryClient

	// CatalogCommands represents the catalog command group
	CatalogCommands = &cobra.Command{
		Use:               "catalog",
		Short:             "Manage the category and branch catalogs",
		PersistentPreRunE: setupClient,
	}

	categoriesCmd = &cobra.Command{
		Use:   "categories",
		Short: "Manage book categories",
	}
	branchesCmd = &cobra.Command{
		Use:   "branches",
		Short: "Manage study branches",
	}

	addCategoryCmd = &cobra.Command{
		Use:   "add [name]",
		Short: "Adds a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcLibrary.AddCategory(args[0]); err != nil {
				return err
			}
			fmt.Println("added successfully")
			return nil
		},
	}
	listCategoriesCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := rpcLibrary.ListCategories()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
	delCategoryCmd = &cobra.Command{
		Use:   "del [name]",
		Short: "Deletes a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcLibrary.DeleteCategory(args[0]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}

	addBranchCmd = &cobra.Command{
		Use:   "add [name]",
		Short: "Adds a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcLibrary.AddBranch(args[0]); err != nil {
				return err
			}
			fmt.Println("added successfully")
			return nil
		},
	}
	listBranchesCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := rpcLibrary.ListBranches()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
	delBranchCmd = &cobra.Command{
		Use:   "del [name]",
		Short: "Deletes a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcLibrary.DeleteBranch(args[0]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the catalog command
	util.SetupRPCClientFlags(CatalogCommands)

	// Add subcommands
	categoriesCmd.AddCommand(addCategoryCmd)
	categoriesCmd.AddCommand(listCategoriesCmd)
	categoriesCmd.AddCommand(delCategoryCmd)
	branchesCmd.AddCommand(addBranchCmd)
	branchesCmd.AddCommand(listBranchesCmd)
	branchesCmd.AddCommand(delBranchCmd)
	CatalogCommands.AddCommand(categoriesCmd)
	CatalogCommands.AddCommand(branchesCmd)
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

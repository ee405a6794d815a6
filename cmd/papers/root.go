package papers

import (
	"fmt"

	"github.com/openshelf/shelfd/cmd/util"
	"github.com/openshelf/shelfd/lib/content"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/rpc/client"
	"github.com/openshelf/shelfd/rpc/common"
	"github.com/spf13/cobra"
)

// maxEmbedBytes caps files embedded as data URIs from the command line
const maxEmbedBytes = 32 * 1024 * 1024

var (
	rpcLibrary *client.LibraryClient

	// PaperCommands represents the papers command group
	PaperCommands = &cobra.Command{
		Use:               "papers",
		Short:             "Browse and manage the question paper collection",
		PersistentPreRunE: setupClient,
	}

	addCmd = &cobra.Command{
		Use:   "add [subject] [year]",
		Short: "Adds a question paper",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paper := library.QuestionPaper{Subject: args[0]}
			if _, err := fmt.Sscanf(args[1], "%d", &paper.Year); err != nil {
				return fmt.Errorf("year must be a number: %w", err)
			}
			paper.Semester, _ = cmd.Flags().GetString("semester")
			paper.ExamType, _ = cmd.Flags().GetString("exam-type")
			paper.Branch, _ = cmd.Flags().GetString("branch")
			paper.StudyYear, _ = cmd.Flags().GetString("study-year")

			if path, _ := cmd.Flags().GetString("document"); path != "" {
				uri, err := content.EmbedFile(path, maxEmbedBytes)
				if err != nil {
					return err
				}
				paper.DocumentRef = uri
			}

			created, err := rpcLibrary.AddPaper(paper)
			if err != nil {
				return err
			}
			fmt.Printf("added paper %s\n", created.ID)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists question papers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := common.PaperFilter{}
			filter.Branch, _ = cmd.Flags().GetString("branch")
			filter.StudyYear, _ = cmd.Flags().GetString("study-year")
			filter.Semester, _ = cmd.Flags().GetString("semester")
			filter.ExamType, _ = cmd.Flags().GetString("exam-type")
			filter.Year, _ = cmd.Flags().GetInt("year")

			papers, err := rpcLibrary.ListPapers(filter)
			if err != nil {
				return err
			}
			for _, p := range papers {
				fmt.Printf("%s  %-30q %d %s %s (%s)\n", p.ID, p.Subject, p.Year, p.Semester, p.ExamType, p.Branch)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:     "del [id]",
		Aliases: []string{"delete"},
		Short:   "Deletes a question paper",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcLibrary.DeletePaper(args[0]); err != nil {
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

	// Add common RPC flags to the papers command
	util.SetupRPCClientFlags(PaperCommands)

	// Add subcommands
	PaperCommands.AddCommand(addCmd)
	PaperCommands.AddCommand(listCmd)
	PaperCommands.AddCommand(delCmd)

	addCmd.Flags().String("semester", "", util.WrapString("Semester the paper belongs to"))
	addCmd.Flags().String("exam-type", "", util.WrapString("Exam type (e.g. Mid-1, Sem)"))
	addCmd.Flags().String("branch", "", util.WrapString("Branch the paper belongs to"))
	addCmd.Flags().String("study-year", "", util.WrapString("Study year the paper belongs to"))
	addCmd.Flags().String("document", "", util.WrapString("Path to the paper document, embedded as a data URI"))

	listCmd.Flags().String("branch", "", util.WrapString("Filter by branch"))
	listCmd.Flags().String("study-year", "", util.WrapString("Filter by study year"))
	listCmd.Flags().String("semester", "", util.WrapString("Filter by semester"))
	listCmd.Flags().String("exam-type", "", util.WrapString("Filter by exam type"))
	listCmd.Flags().Int("year", 0, util.WrapString("Filter by exam year"))
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

package books

import (
	"fmt"

	"github.com/openshelf/shelfd/cmd/util"
	"github.com/openshelf/shelfd/lib/content"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/rpc/common"
	"github.com/spf13/cobra"
)

// maxEmbedBytes caps files embedded as data URIs from the command line
const maxEmbedBytes = 32 * 1024 * 1024

var (
	addCmd = &cobra.Command{
		Use:   "add [title] [author]",
		Short: "Adds a book to the collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			book := library.Book{
				Title:  args[0],
				Author: args[1],
			}
			book.Description, _ = cmd.Flags().GetString("description")
			book.Category, _ = cmd.Flags().GetString("category")
			book.Year, _ = cmd.Flags().GetInt("year")
			book.StudyYear, _ = cmd.Flags().GetInt("study-year")
			book.Language, _ = cmd.Flags().GetString("language")
			book.Pages, _ = cmd.Flags().GetInt("pages")
			book.Publisher, _ = cmd.Flags().GetString("publisher")

			// embed cover and document files as data URIs
			if path, _ := cmd.Flags().GetString("image"); path != "" {
				uri, err := content.EmbedFile(path, maxEmbedBytes)
				if err != nil {
					return err
				}
				book.ImageRef = uri
			}
			if path, _ := cmd.Flags().GetString("document"); path != "" {
				uri, err := content.EmbedFile(path, maxEmbedBytes)
				if err != nil {
					return err
				}
				book.DocumentRef = uri
			}

			created, err := rpcLibrary.AddBook(book)
			if err != nil {
				return err
			}
			fmt.Printf("added book %s\n", created.ID)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all books, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := rpcLibrary.ListBooks()
			if err != nil {
				return err
			}
			for _, b := range books {
				printBookLine(b)
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Shows a single book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := rpcLibrary.GetBook(args[0])
			if err != nil {
				return err
			}
			printBook(book)
			return nil
		},
	}
	searchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Searches books by title or author",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := common.BookSearch{}
			if len(args) == 1 {
				filter.Query = args[0]
			}
			filter.Category, _ = cmd.Flags().GetString("category")
			filter.StudyYear, _ = cmd.Flags().GetInt("study-year")

			books, err := rpcLibrary.SearchBooks(filter)
			if err != nil {
				return err
			}
			for _, b := range books {
				printBookLine(b)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:     "del [id]",
		Aliases: []string{"delete"},
		Short:   "Deletes a book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcLibrary.DeleteBook(args[0]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	remarkCmd = &cobra.Command{
		Use:   "remark [id] [text]",
		Short: "Leaves a remark on a book (requires a logged in reader)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := rpcLibrary.AddRemark(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("remark added, book now has %d remarks\n", len(book.Remarks))
			return nil
		},
	}
	likeCmd = &cobra.Command{
		Use:   "like [id]",
		Short: "Likes a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := rpcLibrary.ReactToBook(args[0], true)
			if err != nil {
				return err
			}
			fmt.Printf("likes=%d, dislikes=%d\n", book.Likes, book.Dislikes)
			return nil
		},
	}
	dislikeCmd = &cobra.Command{
		Use:   "dislike [id]",
		Short: "Dislikes a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := rpcLibrary.ReactToBook(args[0], false)
			if err != nil {
				return err
			}
			fmt.Printf("likes=%d, dislikes=%d\n", book.Likes, book.Dislikes)
			return nil
		},
	}
	summarizeCmd = &cobra.Command{
		Use:   "summarize [id]",
		Short: "Generates and stores a summary for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := rpcAI.SummarizeBook(args[0])
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}
	askCmd = &cobra.Command{
		Use:   "ask [id] [question]",
		Short: "Asks a question about a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := rpcAI.AskAboutBook(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
)

func init() {
	addCmd.Flags().String("description", "", util.WrapString("Description of the book"))
	addCmd.Flags().String("category", "", util.WrapString("Category of the book"))
	addCmd.Flags().Int("year", 0, util.WrapString("Publication year"))
	addCmd.Flags().Int("study-year", 0, util.WrapString("Study year the book is intended for"))
	addCmd.Flags().String("language", "", util.WrapString("Language of the book"))
	addCmd.Flags().Int("pages", 0, util.WrapString("Number of pages"))
	addCmd.Flags().String("publisher", "", util.WrapString("Publisher of the book"))
	addCmd.Flags().String("image", "", util.WrapString("Path to a cover image, embedded as a data URI"))
	addCmd.Flags().String("document", "", util.WrapString("Path to the book document, embedded as a data URI"))

	searchCmd.Flags().String("category", "", util.WrapString("Restrict the search to a category"))
	searchCmd.Flags().Int("study-year", 0, util.WrapString("Restrict the search to a study year"))
}

func printBookLine(b library.Book) {
	fmt.Printf("%s  %-40q %s (%d likes, %d dislikes)\n", b.ID, b.Title, b.Author, b.Likes, b.Dislikes)
}

func printBook(b library.Book) {
	fmt.Printf("id:          %s\n", b.ID)
	fmt.Printf("title:       %s\n", b.Title)
	fmt.Printf("author:      %s\n", b.Author)
	if b.Category != "" {
		fmt.Printf("category:    %s\n", b.Category)
	}
	if b.Year != 0 {
		fmt.Printf("year:        %d\n", b.Year)
	}
	if b.StudyYear != 0 {
		fmt.Printf("study year:  %d\n", b.StudyYear)
	}
	if b.Publisher != "" {
		fmt.Printf("publisher:   %s\n", b.Publisher)
	}
	if b.Language != "" {
		fmt.Printf("language:    %s\n", b.Language)
	}
	if b.Pages != 0 {
		fmt.Printf("pages:       %d\n", b.Pages)
	}
	fmt.Printf("reactions:   %d likes, %d dislikes\n", b.Likes, b.Dislikes)
	if b.Description != "" {
		fmt.Printf("description: %s\n", b.Description)
	}
	if b.Summary != "" {
		fmt.Printf("summary:     %s\n", b.Summary)
	}
	for _, r := range b.Remarks {
		fmt.Printf("remark:      %s (%s, %s)\n", r.Text, r.Author, r.Timestamp.Format("2006-01-02"))
	}
}

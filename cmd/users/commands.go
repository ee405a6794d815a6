package users

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/openshelf/shelfd/cmd/util"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/spf13/cobra"
)

var (
	registerCmd = &cobra.Command{
		Use:   "register [name] [email]",
		Short: "Registers a new reader account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := util.ReadPassword("password: ")
			if err != nil {
				return err
			}

			user := library.User{
				Name:  args[0],
				Email: args[1],
			}
			user.Branch, _ = cmd.Flags().GetString("branch")
			user.Year, _ = cmd.Flags().GetInt("year")

			created, err := rpcLibrary.RegisterUser(user, password)
			if err != nil {
				return err
			}
			fmt.Printf("registered %s (%s)\n", created.Name, created.Email)
			return nil
		},
	}
	loginCmd = &cobra.Command{
		Use:   "login [email]",
		Short: "Logs in and reports the resulting session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := util.ReadPassword("password: ")
			if err != nil {
				return err
			}

			session, err := rpcAuth.Login(args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", session.Email, session.State)
			return nil
		},
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Ends the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcAuth.Logout(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Shows the current session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := rpcAuth.State()
			if err != nil {
				return err
			}
			if session.Email == "" {
				fmt.Printf("state=%s\n", session.State)
			} else {
				fmt.Printf("state=%s, email=%s\n", session.State, session.Email)
			}
			return nil
		},
	}
	resetCmd = &cobra.Command{
		Use:   "reset [email]",
		Short: "Resets a forgotten password via a mailed one-time code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]

			if err := rpcAuth.RequestReset(email); err != nil {
				return err
			}
			fmt.Println("a reset code has been sent to your email address")

			code, err := readLine("code: ")
			if err != nil {
				return err
			}
			if err := rpcAuth.VerifyCode(email, code); err != nil {
				return err
			}

			password, err := util.ReadPassword("new password: ")
			if err != nil {
				return err
			}
			if err := rpcAuth.CompleteReset(email, password); err != nil {
				return err
			}
			fmt.Println("password changed")
			return nil
		},
	}
)

func init() {
	registerCmd.Flags().String("branch", "", util.WrapString("Branch of study"))
	registerCmd.Flags().Int("year", 0, util.WrapString("Year of study"))
}

// readLine reads a single line from stdin with a prompt
func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

package cli

import (
	"errors"
	"fmt"
	"syscall"
	"text/tabwriter"

	"github.com/martijn/homedash/internal/core/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	seedUsername = "test"
	seedEmail    = "test@example.com"
	seedPassword = "test123"
)

// readPassword prompts on stdout and reads without echo.
var readPassword = func(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
	Long:  "Manage dashboard user accounts",
}

var usersAddEmail string

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		password, err := readPassword("Enter password: ")
		if err != nil {
			return err
		}
		confirmPassword, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirmPassword {
			return fmt.Errorf("passwords do not match")
		}

		user, err := services.AuthService.Register(cmd.Context(), username, usersAddEmail, password)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User '%s' created with id %d\n", user.Username, user.ID)
		return nil
	},
}

var usersSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo user if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		_, err = services.AuthService.Register(cmd.Context(), seedUsername, seedEmail, seedPassword)
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			fmt.Fprintf(cmd.OutOrStdout(), "Demo user already present (%s)\n", conflict.Message)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to seed demo user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Demo user '%s' created\n", seedUsername)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		users, err := services.UserService.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, "No users found")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED AT")
		for _, user := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				user.ID,
				user.Username,
				user.Email,
				user.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&usersAddEmail, "email", "", "email address of the new user")
	_ = usersAddCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersSeedCmd)
	usersCmd.AddCommand(usersListCmd)
}

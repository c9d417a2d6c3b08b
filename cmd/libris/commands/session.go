package commands

import (
	"libris/cmd/libris/output"
	"libris/internal/usecase"

	"github.com/spf13/cobra"
)

func newSessionCommands(deps Deps) []*cobra.Command {
	return []*cobra.Command{
		newLoginCommand(deps),
		newRegisterCommand(deps),
		newLogoutCommand(deps),
		newWhoamiCommand(deps),
		newForgotPasswordCommand(deps),
		newProfileCommand(deps),
	}
}

func newLoginCommand(deps Deps) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := deps.Auth.Login(cmd.Context(), &usecase.LoginInput{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			output.Success("logged in as %s <%s>", profile.Name, profile.Email)

			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newRegisterCommand(deps Deps) *cobra.Command {
	var name, email, phone, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := deps.Auth.Register(cmd.Context(), &usecase.RegisterInput{
				Name:     name,
				Email:    email,
				Phone:    phone,
				Password: password,
			})
			if err != nil {
				return err
			}

			output.Success("account created for %s <%s>", profile.Name, profile.Email)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (min 8 characters)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("phone")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Auth.Logout(cmd.Context()); err != nil {
				return err
			}

			output.Success("logged out")

			return nil
		},
	}
}

func newWhoamiCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := deps.Auth.Current()
			if profile == nil {
				output.Muted("not logged in")

				return nil
			}

			output.Primary("%s", profile.Name)
			output.Muted("email: %s", profile.Email)
			if profile.Phone != "" {
				output.Muted("phone: %s", profile.Phone)
			}
			if profile.Admin {
				output.Info("admin account")
			}

			return nil
		},
	}
}

func newForgotPasswordCommand(deps Deps) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Auth.ForgotPassword(cmd.Context(), email); err != nil {
				return err
			}

			output.Success("reset email sent to %s", email)

			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newProfileCommand(deps Deps) *cobra.Command {
	var name, phone, avatar string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := &usecase.UpdateProfileInput{}
			if cmd.Flags().Changed("name") {
				input.Name = &name
			}
			if cmd.Flags().Changed("phone") {
				input.Phone = &phone
			}
			if cmd.Flags().Changed("avatar") {
				input.Avatar = &avatar
			}

			profile, err := deps.Auth.UpdateProfile(cmd.Context(), input)
			if err != nil {
				return err
			}

			output.Success("profile updated: %s", profile.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&phone, "phone", "", "New phone number")
	cmd.Flags().StringVar(&avatar, "avatar", "", "New avatar URL")

	return cmd
}

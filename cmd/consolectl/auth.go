package main

import (
	"fmt"
	"os"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	var req dto.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("PLAGIO_PASSWORD")
			}
			if err := serverutils.ValidateRequest(req); err != nil {
				return err
			}

			ws, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			res, err := service.NewAuthService(a.gw, nil, a.log).Login(cmd.Context(), ws, &req)
			if err != nil {
				return err
			}
			color.Green("Signed in as %s (id %d, %s)", res.Subject, res.UserId, res.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password (defaults to $PLAGIO_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session and organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			if err := service.NewAuthService(a.gw, nil, a.log).Logout(cmd.Context(), ws); err != nil {
				return err
			}
			color.Green("Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			res := service.NewAuthService(a.gw, nil, a.log).Session(ws)
			if !res.Authenticated {
				color.Yellow("Not signed in")
				return nil
			}

			fmt.Printf("%s %s\n", color.CyanString("user:"), res.Subject)
			fmt.Printf("%s %d\n", color.CyanString("id:"), res.UserId)
			fmt.Printf("%s %s\n", color.CyanString("role:"), res.Role)
			if res.Organization != nil {
				fmt.Printf("%s %s (%s)\n", color.CyanString("organization:"), res.Organization.Name, res.Organization.Id)
			}
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newOrgCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "List organizations and choose the active one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			orgs, err := service.NewOrganizationService(a.gw, nil, a.log).List(cmd.Context(), ws)
			if err != nil {
				return err
			}

			var active string
			if current := ws.Organization.Current(); current != nil {
				active = current.Id
			}
			for _, org := range orgs {
				marker := " "
				if org.Id == active {
					marker = color.GreenString("*")
				}
				fmt.Printf("%s %-36s %s\n", marker, org.Id, org.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <organization-id>",
		Short: "Scope projects to an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			org, err := service.NewOrganizationService(a.gw, nil, a.log).Select(cmd.Context(), ws, &dto.SelectOrganizationRequest{OrganizationId: args[0]})
			if err != nil {
				return err
			}
			color.Green("Active organization: %s", org.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Stop scoping projects to an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd.Context())
			if err != nil {
				return err
			}
			return service.NewOrganizationService(a.gw, nil, a.log).ClearCurrent(cmd.Context(), ws)
		},
	})
	return cmd
}

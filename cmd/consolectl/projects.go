package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Gatu-1548/plagio-ia/internal/dto"
	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/pkg/serverutils"
	"github.com/Gatu-1548/plagio-ia/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newProjectsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects in the current scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			projects, err := service.NewProjectService(a.gw, nil, a.log).List(cmd.Context(), ws)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				color.Yellow("No projects")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tORGANIZATION")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Id, p.Name, p.OrganizationId)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project and its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			project, err := service.NewProjectService(a.gw, nil, a.log).Show(cmd.Context(), ws, entity.ID(args[0]))
			if err != nil {
				return err
			}
			printProject(project)
			return nil
		},
	})

	var createReq dto.CreateProjectRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := serverutils.ValidateRequest(createReq); err != nil {
				return err
			}
			ws, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			project, err := service.NewProjectService(a.gw, nil, a.log).Create(cmd.Context(), ws, &createReq)
			if err != nil {
				return err
			}
			color.Green("Created project %s (%s)", project.Name, project.Id)
			return nil
		},
	}
	create.Flags().StringVar(&createReq.Name, "name", "", "Project name")
	_ = create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			if err := service.NewProjectService(a.gw, nil, a.log).Delete(cmd.Context(), ws, entity.ID(args[0])); err != nil {
				return err
			}
			color.Green("Deleted project %s", args[0])
			return nil
		},
	})
	return cmd
}

func printProject(p *entity.Project) {
	fmt.Printf("%s %s\n", color.CyanString("project:"), p.Name)
	fmt.Printf("%s %s\n", color.CyanString("id:"), p.Id)
	if len(p.Documents) == 0 {
		fmt.Println("no documents")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tFILE\tSTATUS\tSCORE")
	for _, d := range p.Documents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Id, d.FileName, statusLabel(d.Status), scoreLabel(d.PlagiarismScore))
	}
	_ = tw.Flush()
}

func statusLabel(s entity.DocumentStatus) string {
	switch s {
	case entity.DocumentStatusCompleted:
		return color.GreenString(string(s))
	case entity.DocumentStatusError, entity.DocumentStatusFailed:
		return color.RedString(string(s))
	case "":
		return "-"
	default:
		return color.YellowString(string(s))
	}
}

func scoreLabel(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *score)
}

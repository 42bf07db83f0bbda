package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/Gatu-1548/plagio-ia/internal/lifecycle"
	"github.com/Gatu-1548/plagio-ia/internal/poller"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errAnalysisTimedOut = errors.New("analysis did not finish before the polling ceiling")

func newUploadCommand(a *app) *cobra.Command {
	var (
		projectID string
		path      string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a PDF to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.signedIn(ctx)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			progress := func(percent int) {
				fmt.Fprintf(os.Stderr, "\ruploading %s %3d%%", filepath.Base(path), percent)
				if percent == 100 {
					fmt.Fprintln(os.Stderr)
				}
			}
			upload, err := ws.Lifecycle.UploadAndTrack(ws.Context(ctx), entity.ID(projectID), gateway.UploadFile{
				Name:   filepath.Base(path),
				Size:   info.Size(),
				Reader: f,
			}, progress)
			if err != nil {
				return err
			}

			if !upload.Tracking {
				color.Yellow("Uploaded, but the gateway returned no document id; nothing to track")
				return nil
			}
			color.Green("Uploaded document %s to project %s", upload.Result.DocumentID, projectID)
			if !watch {
				return nil
			}
			return a.wait(ctx, ws, upload.Result.DocumentID)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Target project id")
	cmd.Flags().StringVar(&path, "file", "", "Path to the PDF")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the analysis until it finishes")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	var (
		projectID string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "status <document-id>",
		Short: "Show the analysis status of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.signedIn(ctx)
			if err != nil {
				return err
			}
			id := entity.ID(args[0])

			if !watch {
				doc, err := a.gw.GetDocument(ws.Context(ctx), id)
				if err != nil {
					return err
				}
				printDocument(doc)
				return nil
			}
			if projectID == "" {
				return errors.New("--project is required with --watch")
			}
			ws.Lifecycle.Track(ws.Context(ctx), entity.ID(projectID), id)
			return a.wait(ctx, ws, id)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project the document belongs to (needed with --watch)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll until the analysis finishes")
	return cmd
}

// wait prints every status update for documentID until its run ends. A run
// that ends without a terminal update (silent timeout) is detected from the
// idle snapshot.
func (a *app) wait(ctx context.Context, ws *workspace.Workspace, documentID entity.ID) error {
	check := time.NewTicker(500 * time.Millisecond)
	defer check.Stop()

	for {
		select {
		case <-ctx.Done():
			ws.Lifecycle.StopTracking()
			return ctx.Err()

		case ev := <-a.events:
			if ev.DocumentID != documentID {
				continue
			}
			printUpdate(ev)
			switch ev.State {
			case poller.StateCompleted:
				if project, ok := ws.Projects.Project(ev.ProjectID); ok {
					printProject(&project)
				}
				return nil
			case poller.StateTimedOut:
				return errAnalysisTimedOut
			}

		case <-check.C:
			status := ws.Lifecycle.Status()
			if status.DocumentID == documentID && status.State == poller.StateIdle && status.Outcome == poller.StateTimedOut {
				return errAnalysisTimedOut
			}
		}
	}
}

func printUpdate(ev lifecycle.Event) {
	elapsed := ev.Elapsed.Truncate(100 * time.Millisecond)
	switch {
	case ev.Err != nil:
		color.Red("[%s] attempt %d: %v", elapsed, ev.Attempt, ev.Err)
	case ev.State == poller.StateCompleted:
		color.Green("[%s] analysis complete, score %s", elapsed, scoreLabel(ev.Document.PlagiarismScore))
	case ev.State == poller.StateTimedOut:
		color.Red("[%s] gave up after %d attempts", elapsed, ev.Attempt)
	case ev.Document != nil:
		fmt.Printf("[%s] attempt %d: %s\n", elapsed, ev.Attempt, statusLabel(ev.Document.Status))
	default:
		fmt.Printf("[%s] %s\n", elapsed, ev.State)
	}
}

func printDocument(d *entity.Document) {
	fmt.Printf("%s %s\n", color.CyanString("document:"), d.Id)
	fmt.Printf("%s %s\n", color.CyanString("file:"), d.FileName)
	fmt.Printf("%s %s\n", color.CyanString("status:"), statusLabel(d.Status))
	if d.Status == entity.DocumentStatusCompleted {
		fmt.Printf("%s %s\n", color.CyanString("score:"), scoreLabel(d.PlagiarismScore))
	}
}

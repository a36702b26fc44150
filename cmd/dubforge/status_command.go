package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dubforge/internal/deps"
	"dubforge/internal/language"
	"dubforge/internal/project"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show projects, their latest stage outcomes, and tool availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := project.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			projects, err := store.ListProjects(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects yet. Run `dubforge dub VIDEO` to start one.")
			} else {
				rows := make([][]string, 0, len(projects))
				for i := range projects {
					proj := &projects[i]
					rows = append(rows, []string{
						strconv.FormatInt(proj.ID, 10),
						proj.Name,
						language.DisplayName(proj.TargetLanguage),
						lastStageSummary(cmd, store, proj),
						proj.OutputPath,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Project", "Target", "Last Stage", "Output"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
			}

			statuses := deps.CheckBinaries(deps.For(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Detail
				if status.Available {
					detail = status.Command
				}
				rows = append(rows, []string{
					status.Name,
					yesNo(status.Available),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Available", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if !deps.AllAvailable(statuses) {
				fmt.Fprintln(out, "Some required tools are missing; stages that need them will fail.")
			}

			return nil
		},
	}
}

// lastStageSummary describes the newest recorded job for a project, for
// example "export completed 2m ago". Projects with no history yet report
// "none".
func lastStageSummary(cmd *cobra.Command, store *project.Store, proj *project.Project) string {
	history, err := store.JobHistory(cmd.Context(), proj.ID)
	if err != nil || len(history) == 0 {
		return "none"
	}
	last := history[len(history)-1]
	return fmt.Sprintf("%s %s %s", last.Stage, last.Status, relativeAge(last.FinishedAt))
}

func relativeAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}

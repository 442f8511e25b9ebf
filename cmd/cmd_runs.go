// cmd_runs.go - Run-Verwaltung
// Hauptfunktionen: RunsHandler, ShowRunHandler, RemoveRunHandler
package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ovdet/ovdet/format"
)

// RunsHandler - Listet alle Trainings-Runs auf
func RunsHandler(cmd *cobra.Command, _ []string) error {
	client, err := checkServerHeartbeat(cmd.Context())
	if err != nil {
		return err
	}

	resp, err := client.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	var data [][]string
	for _, run := range resp.Runs {
		data = append(data, []string{
			run.ID[:8],
			run.Mode,
			run.Status,
			fmt.Sprintf("%.3f", run.FinalMAP50),
			format.HumanTime(run.UpdatedAt, "Never"),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "MODE", "STATUS", "MAP50", "UPDATED"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

// ShowRunHandler - Zeigt einen Run mit Epochen-Kennzahlen
func ShowRunHandler(cmd *cobra.Command, args []string) error {
	client, err := checkServerHeartbeat(cmd.Context())
	if err != nil {
		return err
	}

	resp, err := client.ShowRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	run := resp.Run
	fmt.Printf("  ID        %s\n", run.ID)
	fmt.Printf("  Mode      %s\n", run.Mode)
	fmt.Printf("  Model     %s\n", run.Model)
	fmt.Printf("  Data      %s\n", run.Data)
	fmt.Printf("  Status    %s\n", run.Status)
	fmt.Printf("  Created   %s\n", format.HumanTime(run.CreatedAt, "Never"))
	if run.FinalMAP50 > 0 {
		fmt.Printf("  mAP50     %.3f\n", run.FinalMAP50)
		fmt.Printf("  mAP50-95  %.3f\n", run.FinalMAP5095)
	}

	if len(resp.Metrics) == 0 {
		return nil
	}

	fmt.Println()
	var data [][]string
	for _, m := range resp.Metrics {
		data = append(data, []string{
			fmt.Sprintf("%d", m.Epoch),
			fmt.Sprintf("%.4f", m.BoxLoss),
			fmt.Sprintf("%.4f", m.ClsLoss),
			fmt.Sprintf("%.4f", m.DFLLoss),
			fmt.Sprintf("%.3f", m.MAP50),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"EPOCH", "BOX", "CLS", "DFL", "MAP50"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

// RemoveRunHandler - Loescht Runs
func RemoveRunHandler(cmd *cobra.Command, args []string) error {
	client, err := checkServerHeartbeat(cmd.Context())
	if err != nil {
		return err
	}

	for _, id := range args {
		if err := client.DeleteRun(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("deleted '%s'\n", id)
	}
	return nil
}

// newRunsCmd - Erstellt den runs Command
func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "runs",
		Aliases: []string{"ls"},
		Short:   "List training runs",
		Args:    cobra.ExactArgs(0),
		RunE:    RunsHandler,
	}
}

// newShowRunCmd - Erstellt den show Command
func newShowRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN",
		Short: "Show a training run",
		Args:  cobra.ExactArgs(1),
		RunE:  ShowRunHandler,
	}
}

// newRemoveRunCmd - Erstellt den rm Command
func newRemoveRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm RUN [RUN...]",
		Aliases: []string{"delete"},
		Short:   "Remove training runs",
		Args:    cobra.MinimumNArgs(1),
		RunE:    RemoveRunHandler,
	}
}

// cmd_dataset.go - Daten-Spezifikations-Inspektion
// Hauptfunktionen: DatasetShowHandler
package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ovdet/ovdet/dataset"
	"github.com/ovdet/ovdet/format"
)

// DatasetShowHandler - Loest eine Daten-Spezifikation auf und zeigt
// Quellen, Kategorien und Negativ-Kandidaten
func DatasetShowHandler(cmd *cobra.Command, args []string) error {
	r, err := dataset.ResolveDataSpec(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("  Val split   %s\n", r.ValSplit)
	fmt.Printf("  Categories  %d\n", r.NC)
	fmt.Println()

	var sources []dataset.Dataset
	var data [][]string
	for _, entry := range r.Train {
		kind := "detection"
		if entry.JSONFile != "" {
			kind = "grounding"
		}

		ds, err := entry.Build()
		if err != nil {
			return err
		}
		sources = append(sources, ds)

		data = append(data, []string{kind, entry.ImgPath, format.HumanNumber(uint64(ds.Len()))})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"KIND", "PATH", "IMAGES"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	names, freq := dataset.AggregateCategories(sources)
	negatives := dataset.NegativeLabels(freq, dataset.NegativeThreshold)
	fmt.Println()
	fmt.Printf("  Aggregated categories  %d\n", len(names))
	fmt.Printf("  Negative candidates    %d (>= %d occurrences)\n", len(negatives), dataset.NegativeThreshold)

	return nil
}

// newDatasetCmd - Erstellt den dataset Command
func newDatasetCmd() *cobra.Command {
	datasetCmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect data specs",
	}

	datasetCmd.AddCommand(&cobra.Command{
		Use:   "show DATA",
		Short: "Resolve a data spec and show its sources",
		Args:  cobra.ExactArgs(1),
		RunE:  DatasetShowHandler,
	})

	return datasetCmd
}

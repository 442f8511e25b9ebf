// cmd_embed.go - Label-Embedding Command
// Hauptfunktionen: EmbedHandler
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovdet/ovdet/encoder"
	"github.com/ovdet/ovdet/envconfig"
)

// EmbedHandler - Kodiert Labels und schreibt eine Cache-Datei
func EmbedHandler(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return fmt.Errorf("--out is required")
	}

	enc, err := encoder.RemoteFromEnvironment()
	if err != nil {
		return err
	}

	table, err := encoder.Generate(cmd.Context(), enc, args, int(envconfig.EncodeBatch()), out)
	if err != nil {
		return err
	}

	fmt.Printf("%d labels, dim %d\n", table.Len(), table.Dim())
	fmt.Println(out)
	return nil
}

// newEmbedCmd - Erstellt den embed Command
func newEmbedCmd() *cobra.Command {
	embedCmd := &cobra.Command{
		Use:   "embed LABEL [LABEL...]",
		Short: "Encode labels into an embedding cache file",
		Args:  cobra.MinimumNArgs(1),
		RunE:  EmbedHandler,
	}

	embedCmd.Flags().String("out", "", "Output cache file (GGUF)")

	return embedCmd
}

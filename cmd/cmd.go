// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ovdet/ovdet/envconfig"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "ovdet",
		Short:         "Open-vocabulary detector trainer",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	trainCmd := newTrainCmd()
	embedCmd := newEmbedCmd()
	datasetCmd := newDatasetCmd()
	runsCmd := newRunsCmd()
	showCmd := newShowRunCmd()
	rmCmd := newRemoveRunCmd()
	serveCmd := newServeCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["OVDET_HOST"]}

	for _, cmd := range []*cobra.Command{
		trainCmd,
		embedCmd,
		datasetCmd,
		runsCmd,
		showCmd,
		rmCmd,
		serveCmd,
	} {
		switch cmd {
		case trainCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["OVDET_ENCODER_HOST"],
				envVars["OVDET_ENCODER_MODEL"],
				envVars["OVDET_ENCODE_BATCH"],
				envVars["OVDET_ENGINE_HOST"],
				envVars["OVDET_CACHE"],
				envVars["OVDET_RUNS"],
				envVars["OVDET_NOPROGRESS"],
			})
		case embedCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["OVDET_ENCODER_HOST"],
				envVars["OVDET_ENCODER_MODEL"],
				envVars["OVDET_ENCODE_BATCH"],
			})
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["OVDET_DEBUG"],
				envVars["OVDET_HOST"],
				envVars["OVDET_RUNS"],
				envVars["OVDET_ORIGINS"],
			})
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		trainCmd,
		embedCmd,
		datasetCmd,
		runsCmd,
		showCmd,
		rmCmd,
	)

	return rootCmd
}

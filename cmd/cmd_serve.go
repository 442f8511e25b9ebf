// cmd_serve.go - Server-Start und Versionsanzeige
// Hauptfunktionen: RunServer, versionHandler, checkServerHeartbeat
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ovdet/ovdet/api"
	"github.com/ovdet/ovdet/envconfig"
	"github.com/ovdet/ovdet/server"
	"github.com/ovdet/ovdet/version"
)

// RunServer - Startet den ovdet-Server
func RunServer(_ *cobra.Command, _ []string) error {
	ln, err := net.Listen("tcp", envconfig.Host().Host)
	if err != nil {
		return err
	}

	err = server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// versionHandler - Zeigt die Version an
func versionHandler(cmd *cobra.Command, _ []string) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return
	}

	serverVersion, err := client.Version(cmd.Context())
	if err != nil {
		fmt.Println("Warning: could not connect to a running ovdet instance")
	}

	if serverVersion != "" {
		fmt.Printf("ovdet version is %s\n", serverVersion)
	}

	if serverVersion != version.Version {
		fmt.Printf("Warning: client version is %s\n", version.Version)
	}
}

// checkServerHeartbeat - Prueft ob der Server laeuft
func checkServerHeartbeat(ctx context.Context) (*api.Client, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, err
	}

	if err := client.Heartbeat(ctx); err != nil {
		return nil, fmt.Errorf("%w; is the server running? try `ovdet serve`", err)
	}

	return client, nil
}

// newServeCmd - Erstellt den serve Command
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start ovdet",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}
}

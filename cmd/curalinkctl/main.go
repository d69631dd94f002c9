// Command curalinkctl queries a curalink gateway from the terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/curalink/internal/version"
	curalink "github.com/kailas-cloud/curalink/pkg/sdk"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	url     string
	apiKey  string
	service string
	timeout time.Duration
	json    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "curalinkctl",
		Short:         "Query DICOM archives through a curalink gateway",
		Version:       version.String(),
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.url, "url", envOr("CURALINK_URL", "http://localhost:8000"), "gateway base URL")
	pf.StringVar(&g.apiKey, "api-key", os.Getenv("CURALINK_API_KEY"), "gateway API key")
	pf.StringVar(&g.service, "service", "", "archive id (default: the gateway's default archive)")
	pf.DurationVar(&g.timeout, "timeout", 60*time.Second, "request timeout")
	pf.BoolVar(&g.json, "json", false, "print raw JSON")

	rootCmd.AddCommand(archivesCmd(g))
	rootCmd.AddCommand(healthCmd(g))
	rootCmd.AddCommand(patientsCmd(g))
	rootCmd.AddCommand(studiesCmd(g))
	rootCmd.AddCommand(seriesCmd(g))
	rootCmd.AddCommand(worklistCmd(g))
	rootCmd.AddCommand(hospitalsCmd(g))
	rootCmd.AddCommand(dashboardCmd(g))
	rootCmd.AddCommand(configCmd(g))
	rootCmd.AddCommand(quickCmd(g))
	rootCmd.AddCommand(askCmd(g))
	rootCmd.AddCommand(usageCmd(g))

	return rootCmd
}

func (g *globalFlags) client() (*curalink.Client, error) {
	c, err := curalink.New(g.url,
		curalink.WithAPIKey(g.apiKey),
		curalink.WithService(g.service),
		curalink.WithTimeout(g.timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

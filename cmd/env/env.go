package env

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective server configuration",
		Long:  "Prints the assembled configuration as JSON. Secrets are redacted.",
		Run: func(_ *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()
			out, err := json.MarshalIndent(cfg, "", "  ")
			command.Exit(err)
			fmt.Println(string(out))
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/slowverb/pipeline"
)

func newConfigCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the pipeline configuration as YAML",
		Long: `Print the pipeline configuration as YAML.

Without --config the built-in defaults are printed. With --config the file
is loaded, validated and printed with every default filled in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := pipeline.DefaultConfig()
			if path != "" {
				var err error
				if cfg, err = pipeline.LoadConfig(path); err != nil {
					return err
				}
			}

			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "YAML config file to validate and expand")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/demo.toml"

type options struct {
	configPath string
	frames     int
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "ecsdemo",
		Short:         "Run the demo systems on a single entity context",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "",
		"config file (default $ECS_CONFIG, then "+defaultConfigPath+")")
	cmd.Flags().IntVar(&opts.frames, "frames", -1, "stop after this many frames, overriding loop.max_frames")
	return cmd
}

func (o *options) resolveConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	if p := os.Getenv("ECS_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/registry"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/resolver"
	"github.com/spf13/cobra"
)

func newResolveCmd(s *settings) *cobra.Command {
	c := &cobra.Command{
		Use:   "resolve",
		Short: "Render the template and resolve lock manifests from the pack file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), s, s.v.GetString("target"), s.v.GetBool("check"))
		},
	}
	c.Flags().String("target", targetAll, "output to generate: all, template, mods, resourcepacks or shaderpacks")
	c.Flags().Bool("check", false, "resolve without writing; exit non-zero when outputs are out of date")
	c.Flags().Int("workers", resolver.DefaultWorkers, "concurrent registry lookups")
	return c
}

// Load the pack and regenerate or check the targets
func runResolve(ctx context.Context, s *settings, target string, check bool) error {
	targets, err := parseTargets(target)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	cfg, err := config.Load(s.pack())
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	greeting(cfg)

	r := resolver.New(registry.NewClient(s.registryURL()), resolver.WithWorkers(s.v.GetInt("workers")))
	g := newGenerator(cfg, r, s.outputs(), check)

	stale, err := g.run(ctx, targets)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if len(stale) > 0 {
		return &ExitError{Code: ExitStale, Err: fmt.Errorf("outputs out of date: %s", strings.Join(stale, ", "))}
	}
	return nil
}

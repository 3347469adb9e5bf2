package cmd

import (
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/packagetypes"
	"github.com/spf13/cobra"
)

func newBuildCmd(s *settings) *cobra.Command {
	c := &cobra.Command{
		Use:   "build",
		Short: "Build .mrpack files for client and server from the lock manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(s, s.v.GetString("side"), s.v.GetString("version"))
		},
	}
	addBuildFlags(c)
	c.Flags().String("slug", "", "archive name prefix (default from [build].slug)")
	c.Flags().String("dist", "", "output folder (default from [build].dist_dir)")
	return c
}

func newAllCmd(s *settings) *cobra.Command {
	c := &cobra.Command{
		Use:   "all",
		Short: "Resolve every output, then build the packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runResolve(cmd.Context(), s, targetAll, false); err != nil {
				return err
			}
			return runBuild(s, s.v.GetString("side"), s.v.GetString("version"))
		},
	}
	addBuildFlags(c)
	return c
}

func addBuildFlags(c *cobra.Command) {
	c.Flags().String("side", "", "client, server or both (default from [build].default_side)")
	c.Flags().String("version", "", "override the template versionId")
}

// Load the pack and build archives from the locks
func runBuild(s *settings, side, version string) error {
	cfg, err := config.Load(s.pack())
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	paths := s.outputs()
	_, err = packagetypes.BuildPacks(packagetypes.BuildOptions{
		Config:       cfg,
		TemplatePath: paths.Template,
		LockPaths:    paths.Locks,
		Side:         side,
		Version:      version,
		Slug:         s.v.GetString("slug"),
		DistDir:      s.v.GetString("dist"),
	})
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	return nil
}

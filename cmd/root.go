// Package cmd contains the packctl command line.
package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/config"
	"github.com/Nodular22/Create-Hardcore-Ultimate-Journey/registry"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set via -ldflags.
	Version = "dev"
	// Commit is set via -ldflags.
	Commit = "unknown"
)

const envPrefix = "PACKCTL"

// settings resolves flag values, with PACKCTL_* environment variables as
// fallback for flags left unset.
type settings struct {
	v *viper.Viper
}

func (s *settings) pack() string        { return s.v.GetString("pack") }
func (s *settings) registryURL() string { return s.v.GetString("registry-url") }

func (s *settings) outputs() outputPaths {
	return outputPaths{
		Template: s.v.GetString("template"),
		Locks: map[config.ContentKind]string{
			config.KindMods:          s.v.GetString("mods-lock"),
			config.KindResourcePacks: s.v.GetString("resource-packs-lock"),
			config.KindShaderPacks:   s.v.GetString("shader-packs-lock"),
		},
	}
}

// NewRootCmd builds the packctl command tree.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	s := &settings{v: v}

	root := &cobra.Command{
		Use:           "packctl",
		Short:         "Resolve and package the modpack",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if v.GetBool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("pack", "modpack/pack.toml", "path to the pack file (.toml or .yaml)")
	pf.String("registry-url", registry.DefaultBaseURL, "base URL of the Modrinth API")
	pf.String("template", "modpack/pack.template.json", "path of the rendered template")
	pf.String("mods-lock", "modpack/mods.lock.json", "path of the mods lock manifest")
	pf.String("resource-packs-lock", "modpack/resource-packs.lock.json", "path of the resource packs lock manifest")
	pf.String("shader-packs-lock", "modpack/shader-packs.lock.json", "path of the shader packs lock manifest")
	pf.BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(newResolveCmd(s))
	root.AddCommand(newBuildCmd(s))
	root.AddCommand(newAllCmd(s))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command line and exits with the command's status.
func Execute() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	loadDotEnv(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			log.Error(exitErr.Err)
		}
		os.Exit(exitErr.Code)
	}
	log.Error(err)
	os.Exit(ExitFailure)
}

// loadDotEnv exports the variables of an optional .env file. A missing file
// is fine; an unreadable or malformed one is logged and skipped.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warnf("Ignoring %s", path)
	}
}

// Log pack info
func greeting(cfg *config.PackConfig) {
	log.Infof("Pack file: %s", cfg.Path)
	log.Infof("%s %s (minecraft %s, %s %s)", cfg.Pack.Name, cfg.Pack.Version,
		cfg.Dependencies.Minecraft, cfg.Dependencies.Loader, cfg.Dependencies.LoaderVersion)
}

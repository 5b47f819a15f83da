// Command demo runs the transform pipeline behind a small ebiten
// scene. Partition sizes come from flags or a YAML config file.
package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SteffenBlake/atomic-go/internal/core"
	"github.com/SteffenBlake/atomic-go/internal/core/ebd"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	var debug bool

	cmd := &cobra.Command{
		Use:          "demo",
		Short:        "Run the atomic entity-behavior runtime demo scene",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cfgFile, debug)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().Int("loading-entities", ebd.DefaultConfig().MaxLoadingEntities, "loading partition size")
	cmd.Flags().Int("scene-entities", ebd.DefaultConfig().MaxSceneEntities, "scene partition size")
	cmd.Flags().Int("global-entities", ebd.DefaultConfig().MaxGlobalEntities, "global partition size")

	must(viper.BindPFlag("max_loading_entities", cmd.Flags().Lookup("loading-entities")))
	must(viper.BindPFlag("max_scene_entities", cmd.Flags().Lookup("scene-entities")))
	must(viper.BindPFlag("max_global_entities", cmd.Flags().Lookup("global-entities")))

	return cmd
}

func run(cfgFile string, debug bool) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
		log.Info().Str("file", viper.ConfigFileUsed()).Msg("loaded config")
	}

	var cfg ebd.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return err
	}

	world, err := core.NewWorld(cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	world.Initialize()
	defer world.Shutdown()

	world.Bus.Subscribe(ebd.EventError, func(e ebd.Event) {
		log.Warn().Str("code", e.Err.Code).Msg(e.Err.Message)
	})

	return core.NewGame(world).Run()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Package cmd assembles the EcoAtlas command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecoatlas/ecoatlas-go/cmd/enrich"
	"github.com/ecoatlas/ecoatlas-go/cmd/gbifimport"
	"github.com/ecoatlas/ecoatlas-go/cmd/populate"
	"github.com/ecoatlas/ecoatlas-go/cmd/serve"
	"github.com/ecoatlas/ecoatlas-go/internal/buildinfo"
	"github.com/ecoatlas/ecoatlas-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	build := buildinfo.Get()
	rootCmd := &cobra.Command{
		Use:     "ecoatlas",
		Short:   "EcoAtlas species catalog server",
		Version: fmt.Sprintf("%s (built %s)", build.Version, build.BuildDate),
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		serve.Command(settings),
		populate.Command(settings),
		gbifimport.Command(settings),
		enrich.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines the global command line flags and binds them to viper.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&settings.WebServer.Port, "port", "p", viper.GetString("webserver.port"), "Port for the API server")
	rootCmd.PersistentFlags().StringVar(&settings.Database.SQLite.Path, "db", viper.GetString("database.sqlite.path"), "Path to the SQLite database file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		cobra.CheckErr(fmt.Errorf("error binding flags: %w", err))
	}
}

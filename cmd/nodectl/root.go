// Command nodectl is the operator-facing CLI for node instances
// declared in a config file: list what's configured, run an instance
// in this process, drive a remote instance's processor over the
// control plane (start, stop), or print the connection parameters for
// an instance (client-info, client).
package main

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psi-streaming/nodeflow/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "nodectl",
	Short: "nodectl manages node instances declared in a config file",
}

func init() {
	cobra.OnInitialize(initViper)
	rootCmd.PersistentFlags().StringVar(&configFile, "config_file", "", "additional config file to search for instances")

	rootCmd.AddCommand(listCmd, runCmd, startCmd, stopCmd, clientInfoCmd, clientCmd)
}

func initViper() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "nodectl: could not read %s: %v\n", configFile, err)
		}
		return
	}

	home, err := homedir.Dir()
	if err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	viper.SetConfigName(".nodectl_rc")
	_ = viper.ReadInConfig()
}

func loader() *config.Loader {
	l := config.NewLoader("nodeflow")
	if configFile != "" {
		l = l.WithConfigFile(configFile)
	}
	return l
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

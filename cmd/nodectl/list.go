package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listVerbose bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list the available node instances from the config",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := loader().ListInstances()
		if err != nil {
			return err
		}

		if !listVerbose {
			fmt.Println("Instance name:")
			for _, name := range names {
				fmt.Printf("\t%s\n", name)
			}
			return nil
		}

		for _, name := range names {
			cfg, err := loader().Load(name)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("Instance: %s\n%s%s\n", name, out, "------------------------------------------------------------")
		}

		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "print complete config for each instance")
}

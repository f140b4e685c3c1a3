package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <instance>",
	Short: "start the processor inside a running node instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instance := args[0]

		cfg, err := loader().Load(instance)
		if err != nil {
			return err
		}

		client := newNodeClient(fmt.Sprintf("http://%s", cfg.Address()), instance)
		return client.Start()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <instance>",
	Short: "stop the processor inside a running node instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instance := args[0]

		cfg, err := loader().Load(instance)
		if err != nil {
			return err
		}

		client := newNodeClient(fmt.Sprintf("http://%s", cfg.Address()), instance)
		return client.Stop()
	},
}

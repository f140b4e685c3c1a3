package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clientInfoCmd = &cobra.Command{
	Use:   "client-info <instance>",
	Short: "print the connection parameters needed to build a client for an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instance := args[0]

		cfg, err := loader().Load(instance)
		if err != nil {
			return err
		}

		fmt.Printf("%s = nodectl.NewClient(%q, %q)\n", instance, fmt.Sprintf("http://%s", cfg.Address()), instance)
		return nil
	},
}

// clientCmd reports the same connection parameters as client-info.
// A Python client for this control plane would drop the operator into
// an interactive shell with the client already instantiated; Go has no
// REPL equivalent worth faking, so this prints the same info
// client-info does and leaves driving the control plane to curl, the
// HTTP API directly, or a short Go program.
var clientCmd = &cobra.Command{
	Use:   "client <instance>",
	Short: "print the connection parameters for an instance (see client-info)",
	Args:  cobra.ExactArgs(1),
	RunE:  clientInfoCmd.RunE,
}

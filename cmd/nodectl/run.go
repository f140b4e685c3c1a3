package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psi-streaming/nodeflow/config"
	"github.com/psi-streaming/nodeflow/control"
	"github.com/psi-streaming/nodeflow/examples/recorder"
	"github.com/psi-streaming/nodeflow/node"
	"github.com/psi-streaming/nodeflow/transport/inproc"
)

var runCmd = &cobra.Command{
	Use:   "run <instance>",
	Short: "run a node instance in this process, serving its control plane over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instance := args[0]

		cfg, err := loader().Load(instance)
		if err != nil {
			return err
		}

		registry := node.NewProcessorRegistry()
		recorder.Register(registry)

		processor, err := registry.Build(cfg.ProcessorType, cfg.Parameters)
		if err != nil {
			return err
		}

		socket := inproc.NewSocket(config.DefaultTransportQueueLength)
		defer socket.Close()

		mgr := node.NewManager(node.ManagerConfig{
			Processor:       processor,
			Dialer:          inproc.NewReceiverDialer(socket),
			DataQueueLength: cfg.DataQueueLength,
			ReceiverCount:   cfg.ReceiverCount,
			StatsCapacity:   cfg.StatsBufferLen,
			RawMode:         cfg.RawMode(),
			InstanceName:    instance,
		})
		mgr.SetParameters(cfg.Parameters)

		server := control.NewServer(nil)
		server.Register(instance, mgr)

		fmt.Printf("nodectl: serving instance %q on %s\n", instance, cfg.Address())
		return server.Listen(cfg.Address())
	},
}

// Package config resolves node runtime defaults and per-instance
// processor parameters through layered file discovery: system file,
// user file, working-directory file, then an explicit --config_file,
// each overriding the last. An instance's parameters are returned as
// they stand in the merged layers. It is built on spf13/viper.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Defaults for node runtime configuration.
const (
	DefaultConnectAddress       = "tcp://127.0.0.1:40000"
	DefaultRESTHost             = "0.0.0.0"
	DefaultRESTPort             = 41000
	DefaultDataQueueLength      = 16
	DefaultReceiverCount        = 1
	DefaultStatisticsBufferLen  = 100
	DefaultStartupTimeout       = 5 * time.Second
	DefaultShutdownTimeout      = 5 * time.Second
	DefaultIPCTimeout           = 2 * time.Second
	DefaultIPCPollTimeout       = 500 * time.Millisecond
	DefaultReceiveTimeout       = time.Second
	DefaultTransportQueueLength = 32
)

// InputArgs is the nested "input_args" object of a persisted instance
// entry, matching the documented schema exactly: instance_name is
// mandatory, everything else is optional. This mirrors
// mflow_nodes/script_tools/helpers.py's get_instance_config, which
// reads instance_config["input_args"]["instance_name"] and friends
// out of a nested object rather than off the instance entry directly.
type InputArgs struct {
	InstanceName   string `mapstructure:"instance_name"`
	RESTHost       string `mapstructure:"rest_host"`
	RESTPort       int    `mapstructure:"rest_port"`
	ConnectAddress string `mapstructure:"connect_address"`
	BindingAddress string `mapstructure:"binding_address"`
	ConfigFile     string `mapstructure:"config_file"`
	LogLevel       string `mapstructure:"log_level"`
	Raw            bool   `mapstructure:"raw"`
}

// InstanceConfig is one node instance's resolved configuration: where
// it listens, what it connects to, how its queues are sized, and the
// processor parameters it starts with.
//
// DataQueueLength, ReceiverCount, and StatsBufferLen are not part of
// the documented persisted-config schema (§6 lists only module_to_run,
// input_args, and parameters) — the original never exposes these
// runtime-sizing knobs through the JSON config, only through code-level
// defaults. They are kept as additional top-level instance-config keys
// rather than folded into InputArgs, since InputArgs mirrors the
// documented schema's fixed field set one-for-one.
type InstanceConfig struct {
	Name            string                 `mapstructure:"-"`
	ProcessorType   string                 `mapstructure:"module_to_run"`
	InputArgs       InputArgs              `mapstructure:"input_args"`
	DataQueueLength int                    `mapstructure:"data_queue_length"`
	ReceiverCount   int                    `mapstructure:"n_receiving_threads"`
	StatsBufferLen  int                    `mapstructure:"statistics_buffer_length"`
	Parameters      map[string]interface{} `mapstructure:"parameters"`
}

// applyDefaults fills in any zero-valued field with the package
// defaults.
func (c *InstanceConfig) applyDefaults() {
	if c.InputArgs.ConnectAddress == "" {
		c.InputArgs.ConnectAddress = DefaultConnectAddress
	}
	if c.InputArgs.RESTHost == "" {
		c.InputArgs.RESTHost = DefaultRESTHost
	}
	if c.InputArgs.RESTPort == 0 {
		c.InputArgs.RESTPort = DefaultRESTPort
	}
	if c.DataQueueLength == 0 {
		c.DataQueueLength = DefaultDataQueueLength
	}
	if c.ReceiverCount == 0 {
		c.ReceiverCount = DefaultReceiverCount
	}
	if c.StatsBufferLen == 0 {
		c.StatsBufferLen = DefaultStatisticsBufferLen
	}
	if c.Parameters == nil {
		c.Parameters = map[string]interface{}{}
	}
}

// ConnectAddress returns the upstream transport address this instance
// should dial its receivers against.
func (c *InstanceConfig) ConnectAddress() string {
	return c.InputArgs.ConnectAddress
}

// RawMode reports whether this instance's receivers should decode
// frames through the raw-1.0 passthrough handler rather than htype
// dispatch, per the "raw" input argument.
func (c *InstanceConfig) RawMode() bool {
	return c.InputArgs.Raw
}

// Address returns the host:port the REST control plane should bind.
func (c *InstanceConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.InputArgs.RESTHost, c.InputArgs.RESTPort)
}

// Loader resolves InstanceConfigs from the layered file discovery
// described above.
type Loader struct {
	appName      string
	explicitFile string
	v            *viper.Viper
}

// NewLoader returns a Loader for appName (used to derive the default
// file names, e.g. "nodeflow" -> /etc/nodeflow.json, ~/.nodeflow_rc.json).
func NewLoader(appName string) *Loader {
	return &Loader{appName: appName, v: viper.New()}
}

// WithConfigFile sets an explicit --config_file path that overrides
// every discovered file.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.explicitFile = path
	return l
}

// Load reads every layer in increasing priority order — /etc/<name>,
// ~/.<name>_rc, ./<name>, then the explicit file — merging each on top
// of the last, and returns the instance named inst.
//
// Each layer gets its own viper instance: viper.SetConfigName applies to
// every AddConfigPath entry on that instance, so layers that use
// different file name conventions (/etc/<name> vs ~/.<name>_rc) cannot
// share one instance without the later SetConfigName call silently
// shadowing the earlier layer's search.
func (l *Loader) Load(inst string) (*InstanceConfig, error) {
	l.v = viper.New()

	if err := l.mergeLayer(l.appName, "/etc"); err != nil {
		return nil, err
	}

	if home, err := homedir.Dir(); err == nil {
		if err := l.mergeLayer(fmt.Sprintf(".%s_rc", l.appName), home); err != nil {
			return nil, err
		}
	}

	if err := l.mergeLayer(l.appName, "."); err != nil {
		return nil, err
	}

	if l.explicitFile != "" {
		overlay := viper.New()
		overlay.SetConfigFile(l.explicitFile)
		overlay.SetConfigType(configTypeFromExt(l.explicitFile))
		if err := overlay.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", l.explicitFile, err)
		}
		if err := l.v.MergeConfigMap(overlay.AllSettings()); err != nil {
			return nil, fmt.Errorf("config: merging %s: %w", l.explicitFile, err)
		}
	}

	instances := map[string]InstanceConfig{}
	if err := l.v.Unmarshal(&instances); err != nil {
		return nil, fmt.Errorf("config: unmarshaling instances: %w", err)
	}

	cfg, ok := instances[inst]
	if !ok {
		names := make([]string, 0, len(instances))
		for name := range instances {
			names = append(names, name)
		}
		return nil, fmt.Errorf("config: instance %q is not defined, available instances: %v", inst, names)
	}
	cfg.Name = inst
	cfg.applyDefaults()

	return &cfg, nil
}

// mergeLayer reads configName from configPath into a scratch viper
// instance and merges whatever it finds on top of l.v. A missing file
// at this layer is not fatal; it simply contributes nothing.
func (l *Loader) mergeLayer(configName, configPath string) error {
	layer := viper.New()
	layer.SetConfigName(configName)
	layer.SetConfigType("json")
	layer.AddConfigPath(configPath)

	if err := layer.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return nil
		}
		return fmt.Errorf("config: reading %s in %s: %w", configName, configPath, err)
	}

	return l.v.MergeConfigMap(layer.AllSettings())
}

// ListInstances returns every instance name declared across the
// discovered and explicit config layers.
func (l *Loader) ListInstances() ([]string, error) {
	l.v = viper.New()

	if err := l.mergeLayer(l.appName, "/etc"); err != nil {
		return nil, err
	}
	if home, err := homedir.Dir(); err == nil {
		if err := l.mergeLayer(fmt.Sprintf(".%s_rc", l.appName), home); err != nil {
			return nil, err
		}
	}
	if err := l.mergeLayer(l.appName, "."); err != nil {
		return nil, err
	}
	if l.explicitFile != "" {
		overlay := viper.New()
		overlay.SetConfigFile(l.explicitFile)
		overlay.SetConfigType(configTypeFromExt(l.explicitFile))
		if err := overlay.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", l.explicitFile, err)
		}
		if err := l.v.MergeConfigMap(overlay.AllSettings()); err != nil {
			return nil, fmt.Errorf("config: merging %s: %w", l.explicitFile, err)
		}
	}

	instances := map[string]InstanceConfig{}
	if err := l.v.Unmarshal(&instances); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(instances))
	for name := range instances {
		names = append(names, name)
	}
	return names, nil
}

func configTypeFromExt(path string) string {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

package node

import "fmt"

// ProcessorFactory builds a fresh Processor instance, given the
// instance's configured parameters.
type ProcessorFactory func(parameters map[string]interface{}) (Processor, error)

// ProcessorRegistry maps a processor type name (the configured
// "module_to_run") to the factory that builds it, so a CLI or
// config-driven launcher can start a named processor without compiling
// per-instance binaries.
type ProcessorRegistry struct {
	factories map[string]ProcessorFactory
}

// NewProcessorRegistry returns an empty ProcessorRegistry.
func NewProcessorRegistry() *ProcessorRegistry {
	return &ProcessorRegistry{factories: map[string]ProcessorFactory{}}
}

// Register adds factory under name, replacing any existing
// registration.
func (r *ProcessorRegistry) Register(name string, factory ProcessorFactory) {
	r.factories[name] = factory
}

// Build looks up name and invokes its factory with parameters.
func (r *ProcessorRegistry) Build(name string, parameters map[string]interface{}) (Processor, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("node: no processor registered as %q", name)
	}
	return factory(parameters)
}

// Names returns every registered processor type name.
func (r *ProcessorRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

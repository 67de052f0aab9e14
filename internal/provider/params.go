// Package provider supplies reference implementations of the runner's
// external collaborators (feeds, sinks, the asset registry) and the
// Platform façade that composes project configuration into a
// ready-to-invoke runner.Runner.
package provider

import "gopkg.in/yaml.v3"

// decodeParams re-marshals a provider reference's loosely-typed params
// map into a concrete provider settings struct. viper's generic
// Unmarshal collapses a polymorphic params block into plain
// map[string]any; round-tripping it through yaml.v3 instead of
// mapstructure lets each provider kind declare its own typed settings
// shape without internal/config needing to know about it.
func decodeParams(params map[string]any, out any) error {
	raw, err := yaml.Marshal(params)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(raw, out)
}

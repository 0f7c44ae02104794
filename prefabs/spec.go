package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/animengine/playback"
)

func LoadSpec[T any](filename string) (T, error) {
	var spec T
	if err := LoadSpecInto(filename, &spec); err != nil {
		var zero T
		return zero, err
	}
	return spec, nil
}

// LoadSpecInto decodes the prefab over the values already in out, so fields
// missing from the file keep them.
func LoadSpecInto[T any](filename string, out *T) error {
	data, err := Load(filename)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return nil
}

// EngineConfigFile is the default engine settings prefab.
const EngineConfigFile = "engine.yaml"

// LoadEngineConfig reads engine settings on top of playback.DefaultConfig.
func LoadEngineConfig(filename string) (playback.Config, error) {
	if filename == "" {
		filename = EngineConfigFile
	}
	cfg := playback.DefaultConfig()
	if err := LoadSpecInto(filename, &cfg); err != nil {
		return playback.DefaultConfig(), err
	}
	return cfg, nil
}

package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationYAML mirrors branches.DefaultCommandConfiguration and the
// logging defaults so that the shipped file documents every key.
//
//go:embed default_config.yaml
var defaultConfigurationYAML []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded defaults and their format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationYAML), configurationTypeConstant
}

package cli

import (
	_ "embed"
	"slices"
)

//go:embed default_config.yaml
var defaultConfigurationDocument []byte

// EmbeddedDefaultConfiguration returns the compiled-in configuration document and its format.
// Callers receive a private copy.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return slices.Clone(defaultConfigurationDocument), configurationTypeConstant
}

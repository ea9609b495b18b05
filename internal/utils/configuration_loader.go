package utils

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeyReplacedCharacter                 = "."
	environmentKeyReplacementCharacter              = "_"
	configurationListSeparatorConstant              = ","
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"

	// ConfigurationLayerEmbedded names the compiled-in configuration layer.
	ConfigurationLayerEmbedded = "embedded"
	// ConfigurationLayerDefaults names the programmatic defaults layer.
	ConfigurationLayerDefaults = "defaults"
	// ConfigurationLayerFile names the user configuration file layer.
	ConfigurationLayerFile = "file"
	// ConfigurationLayerEnvironment names the environment variable layer.
	ConfigurationLayerEnvironment = "environment"
)

// ConfigurationLoader resolves configuration in layers, later layers winning: embedded document,
// defaults, the configuration file, then environment variables carrying the loader's prefix.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedDocument  []byte
	embeddedType      string
}

// ConfigurationLoaderOption customizes a ConfigurationLoader.
type ConfigurationLoaderOption func(*ConfigurationLoader)

// WithEmbeddedConfiguration installs a compiled-in document merged beneath every other layer.
// An empty documentType falls back to the loader's configuration type.
func WithEmbeddedConfiguration(document []byte, documentType string) ConfigurationLoaderOption {
	return func(loader *ConfigurationLoader) {
		loader.embeddedDocument = slices.Clone(document)
		loader.embeddedType = strings.TrimSpace(documentType)
	}
}

// LoadedConfiguration describes where the resolved configuration came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
	SearchPaths    []string
	Layers         []string
}

// NewConfigurationLoader creates a loader for "<configurationName>.<configurationType>" files found in searchPaths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string, options ...ConfigurationLoaderOption) *ConfigurationLoader {
	loader := &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       slices.Clone(searchPaths),
	}
	for _, option := range options {
		if option != nil {
			option(loader)
		}
	}
	return loader
}

// LoadConfiguration decodes every layer into targetConfiguration. An explicit configurationFilePath
// replaces the search and its format follows the file extension. Duration fields accept values such
// as "30s" and list fields accept comma separated strings.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	metadata := LoadedConfiguration{SearchPaths: slices.Clone(loader.searchPaths)}
	viperInstance := viper.New()

	embeddedApplied, embeddedError := loader.mergeEmbedded(viperInstance)
	if embeddedError != nil {
		return LoadedConfiguration{}, embeddedError
	}
	if embeddedApplied {
		metadata.Layers = append(metadata.Layers, ConfigurationLayerEmbedded)
	}

	if len(defaultValues) > 0 {
		for defaultKey, defaultValue := range defaultValues {
			viperInstance.SetDefault(defaultKey, defaultValue)
		}
		metadata.Layers = append(metadata.Layers, ConfigurationLayerDefaults)
	}

	fileUsed, fileError := loader.mergeFile(viperInstance, configurationFilePath)
	if fileError != nil {
		return LoadedConfiguration{}, fileError
	}
	if len(fileUsed) > 0 {
		metadata.ConfigFileUsed = fileUsed
		metadata.Layers = append(metadata.Layers, ConfigurationLayerFile)
	}

	if len(loader.environmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
		viperInstance.SetEnvKeyReplacer(strings.NewReplacer(environmentKeyReplacedCharacter, environmentKeyReplacementCharacter))
		viperInstance.AutomaticEnv()
		metadata.Layers = append(metadata.Layers, ConfigurationLayerEnvironment)
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(configurationListSeparatorConstant),
	))
	if unmarshalError := viperInstance.Unmarshal(targetConfiguration, decodeHook); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}
	return metadata, nil
}

func (loader *ConfigurationLoader) mergeEmbedded(viperInstance *viper.Viper) (bool, error) {
	if len(loader.embeddedDocument) == 0 {
		return false, nil
	}
	documentType := loader.embeddedType
	if len(documentType) == 0 {
		documentType = loader.configurationType
	}
	viperInstance.SetConfigType(documentType)
	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedDocument)); mergeError != nil {
		return false, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
	}
	return true, nil
}

// mergeFile merges the explicit file or the first file found on the search paths and returns its path.
// A missing file on the search paths is not an error; a missing explicit file is.
func (loader *ConfigurationLoader) mergeFile(viperInstance *viper.Viper, configurationFilePath string) (string, error) {
	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
		viperInstance.SetConfigType(strings.TrimPrefix(filepath.Ext(configurationFilePath), environmentKeyReplacedCharacter))
	} else {
		viperInstance.SetConfigName(loader.configurationName)
		viperInstance.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
	}

	readError := viperInstance.MergeInConfig()
	if readError == nil {
		return viperInstance.ConfigFileUsed(), nil
	}
	var notFoundError viper.ConfigFileNotFoundError
	if errors.As(readError, &notFoundError) {
		return "", nil
	}
	return "", fmt.Errorf(configurationReadErrorTemplateConstant, readError)
}

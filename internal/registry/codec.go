package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	yamlExtensionConstant                = ".yaml"
	ymlExtensionConstant                 = ".yml"
	tomlExtensionConstant                = ".toml"
	jsonExtensionConstant                = ".json"
	jsonIndentConstant                   = "  "
	yamlIndentConstant                   = 2
	unsupportedExtensionTemplateConstant = "unsupported registry file extension %q (expected .yaml, .yml, .toml, or .json)"
)

// Codec converts a Registry to and from its on-disk representation.
type Codec interface {
	Marshal(repositoryRegistry Registry) ([]byte, error)
	Unmarshal(data []byte, target *Registry) error
}

// CodecForPath selects a codec based on the registry file extension.
func CodecForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case yamlExtensionConstant, ymlExtensionConstant:
		return YAMLCodec{}, nil
	case tomlExtensionConstant:
		return TOMLCodec{}, nil
	case jsonExtensionConstant:
		return JSONCodec{}, nil
	default:
		return nil, fmt.Errorf(unsupportedExtensionTemplateConstant, filepath.Ext(path))
	}
}

// YAMLCodec persists registries as YAML documents.
type YAMLCodec struct{}

// Marshal encodes the registry as YAML.
func (YAMLCodec) Marshal(repositoryRegistry Registry) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(repositoryRegistry); encodeError != nil {
		return nil, encodeError
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, closeError
	}
	return buffer.Bytes(), nil
}

// Unmarshal decodes YAML data into target.
func (YAMLCodec) Unmarshal(data []byte, target *Registry) error {
	return yaml.Unmarshal(data, target)
}

// TOMLCodec persists registries as TOML documents.
type TOMLCodec struct{}

// Marshal encodes the registry as TOML.
func (TOMLCodec) Marshal(repositoryRegistry Registry) ([]byte, error) {
	var buffer bytes.Buffer
	if encodeError := toml.NewEncoder(&buffer).Encode(repositoryRegistry); encodeError != nil {
		return nil, encodeError
	}
	return buffer.Bytes(), nil
}

// Unmarshal decodes TOML data into target.
func (TOMLCodec) Unmarshal(data []byte, target *Registry) error {
	_, decodeError := toml.Decode(string(data), target)
	return decodeError
}

// JSONCodec persists registries as indented JSON.
type JSONCodec struct{}

// Marshal encodes the registry as JSON.
func (JSONCodec) Marshal(repositoryRegistry Registry) ([]byte, error) {
	encoded, encodeError := json.MarshalIndent(repositoryRegistry, "", jsonIndentConstant)
	if encodeError != nil {
		return nil, encodeError
	}
	return append(encoded, '\n'), nil
}

// Unmarshal decodes JSON data into target.
func (JSONCodec) Unmarshal(data []byte, target *Registry) error {
	return json.Unmarshal(data, target)
}

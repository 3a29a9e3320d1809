package encoding

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// LoadAndUnmarshalYAML loads data from the specified path and decodes it into
// the specified structure, rejecting unknown fields the way the teacher's
// strict decoding did.
func LoadAndUnmarshalYAML(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		return decoder.Decode(value)
	})
}

// MarshalAndSaveYAML marshals value as YAML and saves it atomically to path.
func MarshalAndSaveYAML(path string, value interface{}) error {
	return MarshalAndSave(path, func() ([]byte, error) {
		return yaml.Marshal(value)
	})
}

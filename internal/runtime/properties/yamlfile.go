package properties

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadApplicationFile reads a YAML file and returns it as the
// application-configuration tier. Nested mappings flatten to dotted keys:
//
//	incoming:
//	  orders-in:
//	    connector: watermill-kafka
//
// becomes "incoming.orders-in.connector".
func LoadApplicationFile(path string) (*MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read application properties %q: %w", path, err)
	}
	return ParseApplicationYAML(data)
}

// ParseApplicationYAML flattens YAML content into an application-tier source.
func ParseApplicationYAML(data []byte) (*MapSource, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse application properties: %w", err)
	}

	flat := make(map[string]string)
	flatten("", root, flat)
	return NewMapSource("application", OrdinalApplication, flat), nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprintf("%v", v)
		}
	}
}

package storage

import (
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// Config is the hierarchical node handed to Init, Save and Load. Its
// schema belongs to the backend, the facade only passes it through.
type Config struct {
	node *yaml.Node
}

// NewConfig wraps an already parsed node.
func NewConfig(node *yaml.Node) Config {
	return Config{node: node}
}

// ParseConfig parses a YAML document.
func ParseConfig(data []byte) (Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, Wrap(CodeInvalidArgument, OpUnknown, err)
	}
	return Config{node: &doc}, nil
}

// LoadConfigFile reads and parses a YAML file.
func LoadConfigFile(fileName string) (Config, error) {
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		return Config{}, Wrap(CodeInvalidArgument, OpUnknown, err)
	}
	return ParseConfig(data)
}

// Node returns the wrapped node, nil for an empty config.
func (c Config) Node() *yaml.Node {
	return c.root()
}

// IsZero returns true if the config carries no node at all.
func (c Config) IsZero() bool {
	return c.root() == nil
}

// Decode unmarshals the node into v, an empty config leaves v untouched.
func (c Config) Decode(v interface{}) error {
	if root := c.root(); root != nil {
		return root.Decode(v)
	}
	return nil
}

// Lookup walks a path of mapping keys and returns the nested node, or a
// zero Config if any step is missing.
func (c Config) Lookup(path ...string) Config {
	node := c.root()
	for _, key := range path {
		if node == nil || node.Kind != yaml.MappingNode {
			return Config{}
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		node = next
	}
	return Config{node: node}
}

// Marshal renders the config back to YAML.
func (c Config) Marshal() ([]byte, error) {
	root := c.root()
	if root == nil {
		return []byte{}, nil
	}
	return yaml.Marshal(root)
}

// root skips the document node yaml.Unmarshal wraps everything into.
func (c Config) root() *yaml.Node {
	node := c.node
	if node != nil && node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node != nil && node.Kind == 0 {
		// what yaml.Unmarshal leaves for an empty document
		return nil
	}
	return node
}

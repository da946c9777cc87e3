// Package file loads a tree definition from a YAML document.
//
// The document nests children under their parents:
//
//	nodes:
//	  - id: docs
//	    data: {label: "Documentation"}
//	    children:
//	      - id: docs-install
//	        data: {label: "Install"}
//
// The loaded tree is served through the in-memory source, so a file-backed
// tree behaves exactly like a programmatic one (including simulated latency
// for demos).
package file

import (
	"fmt"
	"os"
	"time"

	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/memory"
	"gopkg.in/yaml.v3"
)

// Payload is the node payload shape of file-backed trees.
type Payload = map[string]any

type yamlNode struct {
	ID       string     `yaml:"id"`
	Data     Payload    `yaml:"data"`
	Children []yamlNode `yaml:"children"`
}

type document struct {
	Nodes []yamlNode `yaml:"nodes"`
}

// Option configures the loaded source.
type Option func(*config)

type config struct {
	latency time.Duration
}

// WithLatency delays every call of the loaded source, for demoing the
// asynchronous loading behavior against local data.
func WithLatency(d time.Duration) Option {
	return func(c *config) {
		c.latency = d
	}
}

// Load reads and parses a tree definition file.
func Load(path string, opts ...Option) (*memory.Source[Payload], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	source, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return source, nil
}

// Parse builds a source from YAML bytes.
func Parse(data []byte, opts ...Option) (*memory.Source[Payload], error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid tree document: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("tree document declares no nodes")
	}

	var items []memory.Item[Payload]
	seen := make(map[string]bool)
	var flatten func(nodes []yamlNode, parent string) error
	flatten = func(nodes []yamlNode, parent string) error {
		for _, n := range nodes {
			if n.ID == "" {
				return fmt.Errorf("node under %q is missing an id", parent)
			}
			if seen[n.ID] {
				return fmt.Errorf("duplicate node id %q", n.ID)
			}
			seen[n.ID] = true
			items = append(items, memory.Item[Payload]{ID: n.ID, Data: n.Data, Parent: parent})
			if err := flatten(n.Children, n.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := flatten(doc.Nodes, ""); err != nil {
		return nil, err
	}

	var sourceOpts []memory.SourceOption[Payload]
	if cfg.latency > 0 {
		sourceOpts = append(sourceOpts, memory.WithLatency[Payload](cfg.latency))
	}
	return memory.NewSource(items, sourceOpts...), nil
}

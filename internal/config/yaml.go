package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Frankenween/dot-linker/internal/pass"
)

// yamlPass is one pipeline entry in the YAML form:
//
//	- pass: remove_nodes
//	  file: drop.regex
//	- pass: cut_deg
//	  in: 5
//	  out: 10
//	- pass: unique_edges
//
// File-backed passes point at the same rule files the line format uses.
type yamlPass struct {
	Pass string `yaml:"pass"`
	File string `yaml:"file,omitempty"`
	In   *int   `yaml:"in,omitempty"`
	Out  *int   `yaml:"out,omitempty"`
}

// LoadYAML parses the YAML pipeline form.
func LoadYAML(data []byte) (pass.Pipeline, error) {
	var entries []yamlPass
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing yaml config: %w", err)
	}
	var pipeline pass.Pipeline
	for i, entry := range entries {
		p, err := yamlEntryPass(entry)
		if err != nil {
			return nil, fmt.Errorf("config entry %d: %w", i+1, err)
		}
		pipeline = append(pipeline, p)
	}
	return pipeline, nil
}

func yamlEntryPass(entry yamlPass) (pass.Pass, error) {
	if entry.Pass == "cut_deg" {
		maxIn, maxOut := -1, -1
		if entry.In != nil {
			if *entry.In < 0 {
				return nil, fmt.Errorf("negative incoming bound %d", *entry.In)
			}
			maxIn = *entry.In
		}
		if entry.Out != nil {
			if *entry.Out < 0 {
				return nil, fmt.Errorf("negative outgoing bound %d", *entry.Out)
			}
			maxOut = *entry.Out
		}
		return pass.NewCutDegPass(maxIn, maxOut), nil
	}
	var args []string
	if entry.File != "" {
		args = append(args, entry.File)
	}
	return parsePass(entry.Pass, args)
}

// WriteExample writes a commented sample pipeline to path.
func WriteExample(path string) error {
	const example = `# One pass per line, applied in order.
# remove_nodes drop.regex
# regex_edge_gen edges.rules
# cut_deg +20 -50
# reparent wrappers.regex
# unique_edges
# extract_subgraph roots.txt
# reverse
# remove_edges noise.rules
# term_nodes leaves.txt
`
	if err := os.WriteFile(path, []byte(example), 0644); err != nil {
		return fmt.Errorf("writing example config: %w", err)
	}
	return nil
}

// Names returns the known pass keywords, for help output.
func Names() string {
	return strings.Join([]string{
		"remove_nodes", "regex_edge_gen", "cut_deg", "unique_edges",
		"extract_subgraph", "reverse", "reparent", "remove_edges", "term_nodes",
	}, ", ")
}

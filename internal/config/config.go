// Package config loads pass pipeline descriptions.
//
// The plain format is line oriented: every non-empty line names a pass
// and its arguments, and pipeline order is file order. Most passes take
// a single path to a rule file; cut_deg takes inline +N/-N bounds. The
// same pipelines can be written as YAML (see LoadYAML).
//
// All validation happens here: an unknown pass name, a missing argument,
// an unreadable rule file, a malformed regex or a bad number fail the
// whole load with the offending line identified. No partial pipeline is
// ever returned.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Frankenween/dot-linker/internal/pass"
)

// Load reads a pipeline description from path. Files ending in .yaml or
// .yml use the YAML form, everything else the line format.
func Load(path string) (pass.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return LoadYAML(data)
	}
	return LoadLines(string(data))
}

// LoadLines parses the line-oriented pipeline format. Empty lines and
// lines starting with # are skipped.
func LoadLines(text string) (pass.Pipeline, error) {
	var pipeline pass.Pipeline
	for i, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		p, err := parsePass(fields[0], fields[1:])
		if err != nil {
			return nil, fmt.Errorf("config line %d: %w", i+1, err)
		}
		pipeline = append(pipeline, p)
	}
	return pipeline, nil
}

// parsePass instantiates one pass from its name and arguments.
func parsePass(name string, args []string) (pass.Pass, error) {
	switch name {
	case "remove_nodes":
		patterns, err := ruleLines(args)
		if err != nil {
			return nil, err
		}
		return pass.NewRemoveNodePass(patterns)
	case "regex_edge_gen":
		lines, err := ruleLines(args)
		if err != nil {
			return nil, err
		}
		rules, err := parseEdgeRules(lines)
		if err != nil {
			return nil, err
		}
		return pass.NewRegexEdgeGenPass(rules), nil
	case "cut_deg":
		return parseCutDeg(args)
	case "unique_edges":
		return pass.NewUniqueEdgesPass(), nil
	case "extract_subgraph":
		tags, err := ruleLines(args)
		if err != nil {
			return nil, err
		}
		return pass.NewSubgraphExtractionPass(tags), nil
	case "reverse":
		return pass.NewReverseGraphPass(), nil
	case "reparent":
		patterns, err := ruleLines(args)
		if err != nil {
			return nil, err
		}
		return pass.NewReparentGraphPass(patterns)
	case "remove_edges":
		lines, err := ruleLines(args)
		if err != nil {
			return nil, err
		}
		rules, err := parseEdgePatterns(lines)
		if err != nil {
			return nil, err
		}
		return pass.NewRemoveEdgesPass(rules)
	case "term_nodes":
		data, err := ruleFile(args)
		if err != nil {
			return nil, err
		}
		return pass.NewTerminateNodesPass(strings.Fields(data)), nil
	default:
		return nil, fmt.Errorf("no %q pass", name)
	}
}

// ruleFile reads the single rule-file argument of a pass.
func ruleFile(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("missing rule file argument")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading rule file: %w", err)
	}
	return string(data), nil
}

// ruleLines reads the rule file and returns its non-empty trimmed lines.
func ruleLines(args []string) ([]string, error) {
	data, err := ruleFile(args)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// parseEdgeRules parses regex_edge_gen rules, one per line:
//
//	in  <pattern> <name> [name...]
//	out <pattern> <name> [name...]
func parseEdgeRules(lines []string) ([]pass.EdgeRule, error) {
	var rules []pass.EdgeRule
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("edge rule %q needs a direction, a pattern and at least one name", line)
		}
		var dir pass.Direction
		switch fields[0] {
		case "in":
			dir = pass.Incoming
		case "out":
			dir = pass.Outgoing
		default:
			return nil, fmt.Errorf("edge rule direction must be \"in\" or \"out\", got %q", fields[0])
		}
		rule, err := pass.NewEdgeRule(fields[1], dir, fields[2:])
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// parseEdgePatterns parses remove_edges rules, one per line:
//
//	<from-pattern> <to-pattern>
func parseEdgePatterns(lines []string) ([][2]string, error) {
	var rules [][2]string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("edge removal rule %q needs exactly a from- and a to-pattern", line)
		}
		rules = append(rules, [2]string{fields[0], fields[1]})
	}
	return rules, nil
}

// parseCutDeg parses the inline +N (max incoming) and -N (max outgoing)
// arguments of cut_deg. Omitted bounds stay unbounded.
func parseCutDeg(args []string) (pass.Pass, error) {
	maxIn, maxOut := -1, -1
	for _, arg := range args {
		if len(arg) < 2 {
			return nil, fmt.Errorf("degree bound %q must look like +N or -N", arg)
		}
		n, err := strconv.Atoi(arg[1:])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("degree bound %q has no valid count", arg)
		}
		switch arg[0] {
		case '+':
			maxIn = n
		case '-':
			maxOut = n
		default:
			return nil, fmt.Errorf("degree bound %q must start with '+' or '-'", arg)
		}
	}
	return pass.NewCutDegPass(maxIn, maxOut), nil
}

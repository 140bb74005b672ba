package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smbox/smbox/internal/highlight"
	"github.com/smbox/smbox/internal/log"
)

// LoadHighlights reads the highlights section of the config file at path.
// A missing file or section yields no contexts.
func LoadHighlights(path string) ([]highlight.ContextDef, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	defs, err := ParseHighlights(data)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatHighlight, "Loaded highlight contexts", "path", path, "count", len(defs))
	return defs, nil
}

// LoadRuleSet loads and compiles the highlight rules in the config file at path.
func LoadRuleSet(path string) (*highlight.RuleSet, error) {
	defs, err := LoadHighlights(path)
	if err != nil {
		return nil, err
	}
	rules, err := highlight.NewRuleSet(defs)
	if err != nil {
		return nil, fmt.Errorf("highlights: %w", err)
	}
	return rules, nil
}

// ParseHighlights decodes the highlights section of a YAML document.
// Contexts are returned in the order they appear in the file. The section is
// either a mapping of context names or a plain list of contexts; list entries
// are named by position ("#1", "#2", ...).
func ParseHighlights(data []byte) ([]highlight.ContextDef, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing config: line %d: top level must be a mapping", root.Line)
	}

	section := lookup(root, "highlights")
	if section == nil || isNull(section) {
		return nil, nil
	}

	var defs []highlight.ContextDef
	switch section.Kind {
	case yaml.MappingNode:
		defs = make([]highlight.ContextDef, 0, len(section.Content)/2)
		for i := 0; i+1 < len(section.Content); i += 2 {
			def, err := parseContext(section.Content[i].Value, section.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("highlights: %w", err)
			}
			defs = append(defs, def)
		}
	case yaml.SequenceNode:
		defs = make([]highlight.ContextDef, 0, len(section.Content))
		for i, node := range section.Content {
			def, err := parseContext(fmt.Sprintf("#%d", i+1), node)
			if err != nil {
				return nil, fmt.Errorf("highlights: %w", err)
			}
			defs = append(defs, def)
		}
	default:
		return nil, fmt.Errorf("highlights: line %d: expected a mapping of context names or a list of contexts", section.Line)
	}
	return defs, nil
}

func parseContext(name string, node *yaml.Node) (highlight.ContextDef, error) {
	def := highlight.ContextDef{Name: name}
	if node.Kind != yaml.MappingNode {
		return def, &highlight.RuleError{Context: name, Field: "context", Match: -1,
			Err: fmt.Errorf("line %d: expected a mapping with enter, exit and matches", node.Line)}
	}

	seenMatches := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "enter", "exit":
			s, err := scalar(value)
			if err != nil {
				return def, &highlight.RuleError{Context: name, Field: key, Match: -1, Err: err}
			}
			if key == "enter" {
				def.Enter = s
			} else {
				def.Exit = s
			}
		case "matches", "matchers":
			if seenMatches {
				return def, &highlight.RuleError{Context: name, Field: "matches", Match: -1,
					Err: fmt.Errorf("line %d: matches given twice", node.Content[i].Line)}
			}
			seenMatches = true
			matches, err := parseMatches(name, value)
			if err != nil {
				return def, err
			}
			def.Matches = matches
		default:
			return def, &highlight.RuleError{Context: name, Field: key, Match: -1,
				Err: fmt.Errorf("line %d: unknown key", node.Content[i].Line)}
		}
	}
	return def, nil
}

func parseMatches(name string, node *yaml.Node) ([]highlight.MatchDef, error) {
	if isNull(node) {
		return nil, &highlight.RuleError{Context: name, Field: "matches", Match: -1,
			Err: fmt.Errorf("line %d: %w", node.Line, highlight.ErrMissingMatches)}
	}
	if node.Kind != yaml.SequenceNode {
		return nil, &highlight.RuleError{Context: name, Field: "matches", Match: -1,
			Err: fmt.Errorf("line %d: expected a list", node.Line)}
	}

	matches := make([]highlight.MatchDef, 0, len(node.Content))
	for i, entry := range node.Content {
		m, err := parseMatch(entry)
		if err != nil {
			return nil, &highlight.RuleError{Context: name, Field: "match", Match: i, Err: err}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// parseMatch accepts either [pattern, color] or {match: pattern, color: n}.
// "colour" is read as "color".
func parseMatch(node *yaml.Node) (highlight.MatchDef, error) {
	var patternNode, colorNode *yaml.Node
	switch node.Kind {
	case yaml.SequenceNode:
		if len(node.Content) != 2 {
			return highlight.MatchDef{}, fmt.Errorf("line %d: expected [pattern, color], got %d elements", node.Line, len(node.Content))
		}
		patternNode, colorNode = node.Content[0], node.Content[1]
	case yaml.MappingNode:
		patternNode, colorNode = lookup(node, "match"), lookup(node, "color")
		if colour := lookup(node, "colour"); colour != nil {
			if colorNode != nil {
				return highlight.MatchDef{}, fmt.Errorf("line %d: both color and colour given", node.Line)
			}
			colorNode = colour
		}
		if patternNode == nil {
			return highlight.MatchDef{}, fmt.Errorf("line %d: match is required", node.Line)
		}
		if colorNode == nil {
			return highlight.MatchDef{}, fmt.Errorf("line %d: color is required", node.Line)
		}
	default:
		return highlight.MatchDef{}, fmt.Errorf("line %d: expected [pattern, color] or {match, color}", node.Line)
	}

	pattern, err := scalar(patternNode)
	if err != nil {
		return highlight.MatchDef{}, err
	}
	if colorNode.Kind != yaml.ScalarNode || colorNode.ShortTag() != "!!int" {
		return highlight.MatchDef{}, fmt.Errorf("line %d: color %q is not an integer", colorNode.Line, colorNode.Value)
	}
	var color int
	if err := colorNode.Decode(&color); err != nil {
		return highlight.MatchDef{}, fmt.Errorf("line %d: color %q: %w", colorNode.Line, colorNode.Value, err)
	}
	return highlight.MatchDef{Pattern: pattern, Color: color}, nil
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func scalar(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode || isNull(node) {
		return "", fmt.Errorf("line %d: expected a string", node.Line)
	}
	return node.Value, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

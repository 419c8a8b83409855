package board

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/pipenet/internal/presentation/graph"
)

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	nodeRe       = regexp.MustCompile(`^([^\s\[\(]+)(\[/|\[\(|\[|\()"[^"]*"(/\]|\)\]|\]|\))$`)
	edgeRe       = regexp.MustCompile(`^(\S+) -- "[^"]*" --> (\S+)$`)
	linkStyleRe  = regexp.MustCompile(`^linkStyle (\d+) [^;]+;$`)
)

// Validate checks a generated flowchart before it is mounted. It accepts the
// subset emitted by the graph package: a header, node declarations, labelled
// edges, positional link styles and comments.
func Validate(source string) error {
	lines := strings.Split(strings.TrimRight(source, "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "graph ") {
		return fmt.Errorf("missing flowchart header")
	}

	edges := 0
	var styled []int
	for i, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		lineNo := i + 2

		switch {
		case line == "", strings.HasPrefix(line, "%%"):
			continue
		case linkStyleRe.MatchString(line):
			idx, _ := strconv.Atoi(linkStyleRe.FindStringSubmatch(line)[1])
			styled = append(styled, idx)
		case edgeRe.MatchString(line):
			m := edgeRe.FindStringSubmatch(line)
			for _, id := range m[1:] {
				if err := checkIdentifier(id); err != nil {
					return fmt.Errorf("line %d: %w", lineNo, err)
				}
			}
			edges++
		case nodeRe.MatchString(line):
			if err := checkIdentifier(nodeRe.FindStringSubmatch(line)[1]); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
		default:
			return fmt.Errorf("line %d: unrecognized statement %q", lineNo, line)
		}
	}

	for _, idx := range styled {
		if idx >= edges {
			return fmt.Errorf("linkStyle %d addresses a missing edge (%d edges)", idx, edges)
		}
	}
	return nil
}

func checkIdentifier(id string) error {
	if !identifierRe.MatchString(id) {
		return fmt.Errorf("invalid node identifier %q", id)
	}
	if graph.IsReserved(id) {
		return fmt.Errorf("node identifier %q is a reserved word", id)
	}
	return nil
}

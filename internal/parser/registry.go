package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrNoKeywords       = errors.New("command has no keywords")
	ErrNoHandler        = errors.New("command has no handler")
	ErrInvalidThreshold = errors.New("threshold must be within 0..100")
)

// Catalog is an ordered, immutable set of command definitions. Order breaks
// ties during resolution.
type Catalog struct {
	commands []CommandDef
	keywords []string
}

func NewCatalog(defs []CommandDef) (*Catalog, error) {
	c := &Catalog{commands: make([]CommandDef, 0, len(defs))}
	seen := map[string]bool{}
	for i, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if def.Handler == "" {
			return nil, fmt.Errorf("command %s: %w", name, ErrNoHandler)
		}
		keywords := make([]string, 0, len(def.Keywords))
		for _, k := range def.Keywords {
			n := normaliseKeyword(k)
			if n == "" {
				continue
			}
			keywords = append(keywords, n)
			if !seen[n] {
				seen[n] = true
				c.keywords = append(c.keywords, n)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("command %s: %w", name, ErrNoKeywords)
		}
		c.commands = append(c.commands, CommandDef{Name: name, Keywords: keywords, Handler: def.Handler})
	}
	return c, nil
}

func (c *Catalog) Commands() []CommandDef {
	if c == nil {
		return nil
	}
	out := make([]CommandDef, len(c.commands))
	copy(out, c.commands)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.commands)
}

// Resolve scores every command against tokens and returns the best one whose
// match percentage clears threshold. The count is the raw number of equal
// (token, keyword) pairs, so repeated words count more than once. A later
// command only wins with a strictly higher percentage.
func (c *Catalog) Resolve(tokens []string, threshold float64) (MatchResult, bool) {
	if c == nil || len(tokens) == 0 {
		return MatchResult{}, false
	}
	var best MatchResult
	found := false
	for _, cmd := range c.commands {
		matches := 0
		for _, token := range tokens {
			for _, keyword := range cmd.Keywords {
				if strings.EqualFold(token, keyword) {
					matches++
				}
			}
		}
		percent := 100 * float64(matches) / float64(len(cmd.Keywords))
		if percent > 0 && percent > best.Percent && percent >= threshold {
			best = MatchResult{Command: cmd, Percent: percent}
			found = true
		}
	}
	return best, found
}

// Suggest returns the catalog keyword closest to any token, or "" when nothing
// is near enough to be a plausible typo.
func (c *Catalog) Suggest(tokens []string) string {
	if c == nil {
		return ""
	}
	bestDist := -1
	best := ""
	for _, token := range tokens {
		if len(token) < 2 {
			continue
		}
		for _, keyword := range c.keywords {
			if token == keyword {
				continue
			}
			dist := levenshtein.ComputeDistance(token, keyword)
			if dist > levenshteinLimit(len(keyword)) {
				continue
			}
			if bestDist < 0 || dist < bestDist || (dist == bestDist && keyword < best) {
				bestDist = dist
				best = keyword
			}
		}
	}
	return best
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func ValidateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w, got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

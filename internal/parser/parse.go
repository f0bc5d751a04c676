package parser

import "fmt"

type Parser struct {
	catalog   *Catalog
	threshold float64
}

func New(catalog *Catalog, threshold float64) (*Parser, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("parser needs at least one command")
	}
	return &Parser{catalog: catalog, threshold: threshold}, nil
}

func (p *Parser) Catalog() *Catalog {
	return p.catalog
}

func (p *Parser) Threshold() float64 {
	return p.threshold
}

func (p *Parser) Parse(raw string) Intent {
	intent := Intent{Raw: raw, Tokens: Tokenize(raw)}
	if len(intent.Tokens) == 0 {
		intent.Clarify = &ClarifyQuestion{Prompt: "Enter a command."}
		return intent
	}

	match, ok := p.catalog.Resolve(intent.Tokens, p.threshold)
	if !ok {
		intent.Suggestion = p.catalog.Suggest(intent.Tokens)
		prompt := "I couldn't map that to a command."
		if intent.Suggestion != "" {
			prompt = fmt.Sprintf("I couldn't map that to a command. Did you mean %q?", intent.Suggestion)
		}
		intent.Clarify = &ClarifyQuestion{Prompt: prompt}
		return intent
	}
	intent.Resolved = true
	intent.Match = match
	return intent
}

package parser

// HandlerKind names the handler a command dispatches to.
type HandlerKind string

type CommandDef struct {
	Name     string
	Keywords []string
	Handler  HandlerKind
}

type MatchResult struct {
	Command CommandDef
	Percent float64
}

// Intent is the outcome of parsing one input line.
type Intent struct {
	Raw        string
	Tokens     []string
	Resolved   bool
	Match      MatchResult
	Suggestion string
	Clarify    *ClarifyQuestion
}

type ClarifyQuestion struct {
	Prompt string
}

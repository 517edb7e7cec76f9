package parser

type IntentKind int

const (
	Command IntentKind = iota
	Query
	Help
	Unknown
)

type Intent struct {
	Raw        string
	Normalised string
	Kind       IntentKind
	Verb       string
	Args       []string
	// Text is the free-form remainder after the verb, casing kept, for
	// commands that take a message.
	Text       string
	Confidence float64
	Clarify    *ClarifyQuestion
}

type ClarifyQuestion struct {
	Prompt  string
	Options []Intent
}

// ParseContext lists the names arguments are resolved against.
type ParseContext struct {
	Characters    []string
	Locations     []string
	LastCharacter string
}

type CommandDef struct {
	Canonical string
	Aliases   []string
	MinArgs   int
	// MaxArgs < 0 means unbounded.
	MaxArgs  int
	FreeText bool
	Usage    string
	Summary  string
}

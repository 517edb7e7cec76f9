package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type Parser struct {
	registry *Registry
}

func New() *Parser {
	return &Parser{registry: DefaultRegistry()}
}

func (p *Parser) RegisterCommand(c CommandDef) {
	p.registry.RegisterCommand(c)
}

func (p *Parser) Commands() []CommandDef {
	return p.registry.Commands()
}

func (p *Parser) Parse(ctx ParseContext, raw string) Intent {
	intent := Intent{
		Raw:        raw,
		Normalised: normaliseInput(raw),
		Kind:       Unknown,
		Confidence: 0,
	}
	if intent.Normalised == "" {
		intent.Clarify = &ClarifyQuestion{Prompt: "Enter a command. Type help for the list."}
		return intent
	}

	tokens := tokenise(intent.Normalised)
	cmdMatch, alternates := p.registry.matchCommand(tokens)
	if cmdMatch.Canonical == "" || cmdMatch.Score < 0.5 {
		if inferred := inferFreeTextIntent(ctx, intent.Raw, intent.Normalised); inferred != nil {
			return *inferred
		}
		intent.Clarify = &ClarifyQuestion{
			Prompt: "I couldn't map that to a command. Try help, status, ask, send, choose, vote, next.",
		}
		return intent
	}

	if len(alternates) > 0 && (cmdMatch.Score-alternates[0].Score) < 0.05 && alternates[0].Score > 0.65 {
		intent.Clarify = &ClarifyQuestion{
			Prompt: "Did you mean:",
			Options: []Intent{
				{Raw: raw, Normalised: cmdMatch.Canonical, Kind: commandKind(cmdMatch.Canonical), Verb: cmdMatch.Canonical, Confidence: cmdMatch.Score},
				{Raw: raw, Normalised: alternates[0].Canonical, Kind: commandKind(alternates[0].Canonical), Verb: alternates[0].Canonical, Confidence: alternates[0].Score},
			},
		}
		return intent
	}

	intent.Verb = cmdMatch.Canonical
	intent.Kind = commandKind(intent.Verb)
	intent.Confidence = clampScore(cmdMatch.Score)

	argsTokens := tokens
	if cmdMatch.Consumed > 0 && len(tokens) >= cmdMatch.Consumed {
		argsTokens = tokens[cmdMatch.Consumed:]
	}

	def, _ := p.registry.command(intent.Verb)
	if def.FreeText {
		intent.Text = remainder(raw, cmdMatch.Consumed)
		if intent.Text != "" {
			intent.Args = []string{intent.Text}
		}
		if len(intent.Args) < def.MinArgs {
			intent.Clarify = &ClarifyQuestion{Prompt: fmt.Sprintf("What should I %s?", def.Canonical)}
			intent.Confidence = 0.42
		}
		return intent
	}

	resolvedArgs, clarify, argScore := p.resolveArgs(ctx, def, argsTokens)
	if clarify != nil {
		intent.Clarify = clarify
		intent.Confidence = 0.45
		return intent
	}
	intent.Args = resolvedArgs
	intent.Confidence = clampScore((intent.Confidence * 0.75) + (argScore * 0.25))

	if len(intent.Args) < def.MinArgs {
		if def.Canonical == "send" && len(intent.Args) == 1 {
			if options := buildLocationOptions(ctx, intent.Args[0], 5); len(options) > 0 {
				intent.Clarify = &ClarifyQuestion{
					Prompt:  fmt.Sprintf("Where should %s go?", intent.Args[0]),
					Options: options,
				}
				intent.Confidence = 0.46
				return intent
			}
		}
		intent.Clarify = &ClarifyQuestion{Prompt: fmt.Sprintf("usage: %s", def.Usage)}
		intent.Confidence = 0.42
		return intent
	}

	if def.MaxArgs >= 0 && len(intent.Args) > def.MaxArgs {
		intent.Args = append([]string(nil), intent.Args[:def.MaxArgs]...)
		intent.Confidence = clampScore(intent.Confidence - 0.05)
	}

	if intent.Confidence < 0.52 && intent.Clarify == nil {
		intent.Clarify = &ClarifyQuestion{Prompt: "I have low confidence in that parse. Please rephrase."}
	}
	return intent
}

func commandKind(verb string) IntentKind {
	switch verb {
	case "help":
		return Help
	case "status", "roster", "inventory", "quests", "locations", "dilemma":
		return Query
	default:
		return Command
	}
}

// remainder returns raw with its first n words removed, original casing kept.
func remainder(raw string, n int) string {
	fields := strings.Fields(raw)
	if n >= len(fields) {
		return ""
	}
	fields = fields[n:]
	if strings.EqualFold(strings.Trim(fields[0], ",:"), "angel") {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

func (p *Parser) resolveArgs(ctx ParseContext, def CommandDef, args []string) ([]string, *ClarifyQuestion, float64) {
	if len(args) == 0 {
		return nil, nil, 0.9
	}
	switch def.Canonical {
	case "send":
		return resolveSend(ctx, dropFillers(args))
	case "set":
		return resolveSet(ctx, args)
	default:
		return args, nil, 0.9
	}
}

// resolveSend reads "<character> <location>" where either side may span
// several words.
func resolveSend(ctx ParseContext, args []string) ([]string, *ClarifyQuestion, float64) {
	if len(args) == 0 {
		return nil, nil, 0.9
	}
	who, rest, whoScore, clarify := resolveCharacter(ctx, "send", args)
	if clarify != nil {
		return nil, clarify, 0.5
	}
	if len(rest) == 0 {
		return []string{who}, nil, whoScore
	}

	joined := strings.Join(rest, " ")
	places, placeScore, tie := resolveName(joined, ctx.Locations)
	if tie {
		options := make([]Intent, 0, 2)
		for idx := 0; idx < 2; idx++ {
			options = append(options, Intent{
				Kind:       Command,
				Verb:       "send",
				Args:       []string{who, places[idx]},
				Confidence: placeScore - float64(idx)*0.01,
			})
		}
		return nil, &ClarifyQuestion{Prompt: "Which location?", Options: options}, 0.52
	}
	if len(places) == 1 {
		return []string{who, places[0]}, nil, minScore(whoScore, placeScore)
	}
	return []string{who, joined}, nil, minScore(whoScore, 0.6)
}

func resolveSet(ctx ParseContext, args []string) ([]string, *ClarifyQuestion, float64) {
	who, rest, score, clarify := resolveCharacter(ctx, "set", args)
	if clarify != nil {
		return nil, clarify, 0.5
	}
	out := []string{who}
	if len(rest) > 0 {
		stats, statScore, _ := bestMatches(normaliseInput(rest[0]), statNames)
		if len(stats) > 0 {
			out = append(out, stats[0])
			score = minScore(score, statScore)
		} else {
			out = append(out, rest[0])
			score -= 0.1
		}
		out = append(out, rest[1:]...)
	}
	return out, nil, clampScore(score)
}

var statNames = []string{"hunger", "thirst", "sanity", "health"}

// resolveCharacter consumes the leading character name, trying two words
// before one.
func resolveCharacter(ctx ParseContext, verb string, args []string) (string, []string, float64, *ClarifyQuestion) {
	token := args[0]
	if isPronoun(token) {
		if strings.TrimSpace(ctx.LastCharacter) == "" {
			return "", nil, 0, &ClarifyQuestion{Prompt: "Who does that refer to?"}
		}
		return ctx.LastCharacter, args[1:], 0.82, nil
	}

	consumed := 1
	if len(args) > 1 {
		if _, s, _ := resolveName(token+" "+args[1], ctx.Characters); s > 0.9 {
			token = token + " " + args[1]
			consumed = 2
		}
	}
	names, score, tie := resolveName(token, ctx.Characters)
	if tie {
		options := make([]Intent, 0, 2)
		for idx := 0; idx < 2; idx++ {
			options = append(options, Intent{
				Kind:       Command,
				Verb:       verb,
				Args:       append([]string{names[idx]}, args[consumed:]...),
				Confidence: score - float64(idx)*0.01,
			})
		}
		return "", nil, 0, &ClarifyQuestion{Prompt: "Who do you mean?", Options: options}
	}
	if len(names) == 1 {
		return names[0], args[consumed:], score, nil
	}
	return token, args[consumed:], 0.6, nil
}

// resolveName matches token against pool and answers with the pool's own
// spelling of the winners.
func resolveName(token string, pool []string) ([]string, float64, bool) {
	n := normaliseInput(token)
	if n == "" || len(pool) == 0 {
		return nil, 0, false
	}
	display := make(map[string]string, len(pool))
	for _, v := range pool {
		if key := normaliseInput(v); key != "" {
			if _, dup := display[key]; !dup {
				display[key] = v
			}
		}
	}
	keys := make([]string, 0, len(display))
	for k := range display {
		keys = append(keys, k)
	}
	matches, score, tie := bestMatches(n, keys)
	for i, m := range matches {
		matches[i] = display[m]
	}
	return matches, score, tie
}

func bestMatches(token string, all []string) ([]string, float64, bool) {
	if len(all) == 0 {
		return nil, 0, false
	}
	type scored struct {
		val   string
		score float64
	}
	results := make([]scored, 0, len(all))
	for _, cand := range all {
		score := 0.0
		switch {
		case token == cand:
			score = 1.0
		case strings.HasPrefix(cand, token) && len(token) >= 2:
			score = 0.9
		default:
			dist := levenshtein.ComputeDistance(token, cand)
			if dist > levenshteinLimit(len(cand)) {
				continue
			}
			score = 0.72 - (0.08 * float64(dist))
		}
		results = append(results, scored{val: cand, score: clampScore(score)})
	}
	if len(results) == 0 {
		return nil, 0, false
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].val < results[j].val
		}
		return results[i].score > results[j].score
	})

	best := results[0]
	tie := len(results) > 1 && (best.score-results[1].score) < 0.05 && results[1].score > 0.6
	if tie {
		return []string{best.val, results[1].val}, best.score, true
	}
	return []string{best.val}, best.score, false
}

func buildLocationOptions(ctx ParseContext, who string, maxOptions int) []Intent {
	options := make([]Intent, 0, maxOptions)
	for _, loc := range ctx.Locations {
		if strings.TrimSpace(loc) == "" {
			continue
		}
		options = append(options, Intent{
			Kind:       Command,
			Verb:       "send",
			Args:       []string{who, loc},
			Confidence: 0.88,
		})
		if len(options) >= maxOptions {
			break
		}
	}
	return options
}

func inferFreeTextIntent(ctx ParseContext, raw string, normalised string) *Intent {
	n := normalised
	makeIntent := func(kind IntentKind, verb string, args []string, confidence float64) *Intent {
		return &Intent{
			Raw:        raw,
			Normalised: normalised,
			Kind:       kind,
			Verb:       verb,
			Args:       args,
			Confidence: clampScore(confidence),
		}
	}

	if containsAnyPhrase(n, "what do we have", "what have we got", "whats left", "what s left", "how much food", "how much water") {
		return makeIntent(Query, "inventory", nil, 0.9)
	}
	if containsAnyPhrase(n, "who is alive", "who s alive", "whos alive", "who is left", "how is everyone", "hows everyone", "how s everyone") {
		return makeIntent(Query, "roster", nil, 0.9)
	}
	if containsAnyPhrase(n, "where can we go", "where can i go", "where to go") {
		return makeIntent(Query, "locations", nil, 0.86)
	}
	if containsAnyPhrase(n, "go to sleep", "end the day", "end day", "lights out") {
		return makeIntent(Command, "next", nil, 0.8)
	}

	if strings.HasPrefix(n, "angel ") || containsAnyPhrase(n, "hey angel", "please angel") {
		text := remainder(raw, 0)
		ask := makeIntent(Command, "ask", []string{text}, 0.78)
		ask.Text = text
		return ask
	}

	// "father go to the pharmacy"
	tokens := tokenise(n)
	if len(tokens) >= 3 {
		for i, tok := range tokens {
			if tok != "go" && tok != "goes" && tok != "head" && tok != "heads" {
				continue
			}
			if i == 0 || i == len(tokens)-1 {
				break
			}
			args, clarify, score := resolveSend(ctx, append(append([]string(nil), tokens[:i]...), dropFillers(tokens[i+1:])...))
			if clarify != nil {
				return &Intent{Raw: raw, Normalised: normalised, Kind: Command, Verb: "send", Confidence: 0.52, Clarify: clarify}
			}
			if len(args) == 2 {
				return makeIntent(Command, "send", args, minScore(score, 0.8))
			}
			break
		}
	}

	return nil
}

func containsAnyPhrase(value string, phrases ...string) bool {
	for _, phrase := range phrases {
		if containsPhrase(value, phrase) {
			return true
		}
	}
	return false
}

func containsPhrase(value, phrase string) bool {
	p := normaliseInput(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+value+" ", " "+p+" ")
}

func minScore(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IntentToCommandString renders an intent back into a line the parser
// accepts, which is how clarify options are replayed.
func IntentToCommandString(intent Intent) string {
	verb := normaliseInput(intent.Verb)
	if verb == "" {
		return ""
	}
	if intent.Text != "" {
		return verb + " " + intent.Text
	}
	args := make([]string, 0, len(intent.Args))
	for _, arg := range intent.Args {
		if s := strings.TrimSpace(arg); s != "" {
			args = append(args, s)
		}
	}
	if len(args) == 0 {
		return verb
	}
	return verb + " " + strings.Join(args, " ")
}

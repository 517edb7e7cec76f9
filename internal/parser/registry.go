package parser

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type commandPhrase struct {
	canonical string
	alias     string
	tokens    []string
}

type Registry struct {
	commands map[string]CommandDef
	phrases  []commandPhrase
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]CommandDef),
	}
}

func (r *Registry) RegisterCommand(c CommandDef) {
	c.Canonical = normaliseInput(c.Canonical)
	if c.Canonical == "" {
		return
	}
	r.commands[c.Canonical] = c

	r.phrases = append(r.phrases, commandPhrase{
		canonical: c.Canonical,
		alias:     c.Canonical,
		tokens:    tokenise(c.Canonical),
	})
	for _, a := range c.Aliases {
		n := normaliseInput(a)
		if n == "" {
			continue
		}
		r.phrases = append(r.phrases, commandPhrase{
			canonical: c.Canonical,
			alias:     n,
			tokens:    tokenise(n),
		})
	}
}

func (r *Registry) command(canonical string) (CommandDef, bool) {
	canonical = normaliseInput(canonical)
	cmd, ok := r.commands[canonical]
	return cmd, ok
}

type commandCandidate struct {
	Canonical string
	Alias     string
	Consumed  int
	Score     float64
	Source    string
}

func (r *Registry) matchCommand(tokens []string) (commandCandidate, []commandCandidate) {
	if len(tokens) == 0 {
		return commandCandidate{}, nil
	}
	in := strings.Join(tokens, " ")
	cands := make([]commandCandidate, 0, len(r.phrases))
	for _, phrase := range r.phrases {
		if len(phrase.tokens) == 0 {
			continue
		}
		consumed := min(len(tokens), len(phrase.tokens))
		prefix := strings.Join(tokens[:consumed], " ")

		if consumed == len(phrase.tokens) && prefix == phrase.alias {
			score := 1.0
			source := "exact"
			if phrase.alias != phrase.canonical {
				score = 0.97
				source = "alias"
			}
			cands = append(cands, commandCandidate{
				Canonical: phrase.canonical,
				Alias:     phrase.alias,
				Consumed:  consumed,
				Score:     score,
				Source:    source,
			})
			continue
		}

		if len(phrase.tokens) == 1 && strings.HasPrefix(phrase.alias, tokens[0]) && len(tokens[0]) >= 2 {
			cands = append(cands, commandCandidate{
				Canonical: phrase.canonical,
				Alias:     phrase.alias,
				Consumed:  1,
				Score:     0.9,
				Source:    "prefix",
			})
			continue
		}

		// Fuzzy: only when there was no exact/prefix hit for this phrase.
		cut := consumed
		compare := prefix
		if len(phrase.tokens) > 1 && len(tokens) >= len(phrase.tokens) {
			cut = len(phrase.tokens)
			compare = strings.Join(tokens[:cut], " ")
		}
		if cut == 0 || compare == "" {
			continue
		}
		if len(compare) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(compare, phrase.alias)
		limit := levenshteinLimit(len(phrase.alias))
		if dist > limit {
			continue
		}
		score := 0.72 - (0.08 * float64(dist))
		if strings.Contains(in, phrase.alias) {
			score += 0.04
		}
		if phrase.alias != phrase.canonical {
			score += 0.03
		}
		cands = append(cands, commandCandidate{
			Canonical: phrase.canonical,
			Alias:     phrase.alias,
			Consumed:  cut,
			Score:     score,
			Source:    "lev",
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score == cands[j].Score {
			if cands[i].Consumed == cands[j].Consumed {
				return cands[i].Canonical < cands[j].Canonical
			}
			return cands[i].Consumed > cands[j].Consumed
		}
		return cands[i].Score > cands[j].Score
	})

	if len(cands) == 0 {
		return commandCandidate{}, nil
	}
	best := cands[0]
	alts := make([]commandCandidate, 0, 4)
	seen := map[string]bool{best.Canonical: true}
	for _, c := range cands[1:] {
		if seen[c.Canonical] {
			continue
		}
		seen[c.Canonical] = true
		alts = append(alts, c)
		if len(alts) >= 4 {
			break
		}
	}
	return best, alts
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

func (r *Registry) Commands() []CommandDef {
	out := make([]CommandDef, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

func DefaultRegistry() *Registry {
	r := NewRegistry()
	commands := []CommandDef{
		{Canonical: "help", Aliases: []string{"h", "commands", "?"}, MinArgs: 0, MaxArgs: 1, Usage: "help [command]", Summary: "list commands"},
		{Canonical: "status", Aliases: []string{"stats", "report", "st"}, MinArgs: 0, MaxArgs: 0, Usage: "status", Summary: "day, phase and family condition"},
		{Canonical: "roster", Aliases: []string{"family", "who"}, MinArgs: 0, MaxArgs: 0, Usage: "roster", Summary: "everyone in the bunker"},
		{Canonical: "inventory", Aliases: []string{"inv", "stock", "supplies"}, MinArgs: 0, MaxArgs: 0, Usage: "inventory", Summary: "shared stock"},
		{Canonical: "quests", Aliases: []string{"quest", "objectives", "tasks"}, MinArgs: 0, MaxArgs: 0, Usage: "quests", Summary: "active and finished quests"},
		{Canonical: "ask", Aliases: []string{"request", "talk", "tell angel"}, MinArgs: 1, MaxArgs: -1, FreeText: true, Usage: "ask <message>", Summary: "speak to the angel"},
		{Canonical: "send", Aliases: []string{"explore", "scavenge"}, MinArgs: 2, MaxArgs: 2, Usage: "send <character> <location>", Summary: "send someone into the city"},
		{Canonical: "locations", Aliases: []string{"locs", "map", "places"}, MinArgs: 0, MaxArgs: 0, Usage: "locations", Summary: "known places and their risk"},
		{Canonical: "expeditions", Aliases: []string{"trips", "away"}, MinArgs: 0, MaxArgs: 0, Usage: "expeditions", Summary: "who is out and where"},
		{Canonical: "resolve", Aliases: []string{"recall", "return"}, MinArgs: 0, MaxArgs: 1, Usage: "resolve [expedition]", Summary: "bring explorers home"},
		{Canonical: "dilemma", Aliases: []string{"problem", "situation"}, MinArgs: 0, MaxArgs: 0, Usage: "dilemma", Summary: "show the current dilemma"},
		{Canonical: "choose", Aliases: []string{"pick", "select", "option"}, MinArgs: 1, MaxArgs: 1, Usage: "choose <n>", Summary: "decide the dilemma"},
		{Canonical: "vote", Aliases: []string{"ballot"}, MinArgs: 1, MaxArgs: 1, Usage: "vote <n>", Summary: "cast a vote"},
		{Canonical: "startvote", Aliases: []string{"start vote", "poll"}, MinArgs: 0, MaxArgs: 0, Usage: "startvote", Summary: "open a timed vote"},
		{Canonical: "tick", Aliases: []string{"wait"}, MinArgs: 0, MaxArgs: 1, Usage: "tick [seconds]", Summary: "let time pass"},
		{Canonical: "next", Aliases: []string{"continue", "advance", "end phase", "done"}, MinArgs: 0, MaxArgs: 0, Usage: "next", Summary: "finish the current phase"},
		{Canonical: "set", Aliases: []string{"debug"}, MinArgs: 3, MaxArgs: 3, Usage: "set <character> <stat> <value>", Summary: "overwrite a stat"},
		{Canonical: "save", MinArgs: 0, MaxArgs: 1, Usage: "save [slot]", Summary: "save the run"},
		{Canonical: "load", MinArgs: 0, MaxArgs: 1, Usage: "load [slot]", Summary: "restore a saved run"},
		{Canonical: "delete", Aliases: []string{"del", "erase"}, MinArgs: 0, MaxArgs: 1, Usage: "delete [slot]", Summary: "remove a save"},
		{Canonical: "quit", Aliases: []string{"exit", "q", "bye"}, MinArgs: 0, MaxArgs: 0, Usage: "quit", Summary: "leave the bunker"},
	}
	for _, cmd := range commands {
		r.RegisterCommand(cmd)
	}
	return r
}

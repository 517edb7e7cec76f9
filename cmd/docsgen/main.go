package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appengine-ltd/bunker/internal/game"
	"github.com/appengine-ltd/bunker/internal/parser"
	"github.com/appengine-ltd/bunker/internal/tables"
)

type docFile struct {
	Name    string
	Title   string
	Content string
}

func main() {
	var (
		root     string
		override string
	)
	flag.StringVar(&root, "out", filepath.Join("docs", "reference", "catalogs"), "output directory")
	flag.StringVar(&override, "tables", "", "optional tables override file")
	flag.Parse()

	cat, err := tables.Load(override)
	if err != nil {
		fatal(err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		fatal(err)
	}

	files := generateAll(cat, parser.New())
	for _, f := range files {
		path := filepath.Join(root, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			fatal(err)
		}
		fmt.Printf("wrote %s\n", path)
	}

	indexPath := filepath.Join(root, "README.md")
	if err := os.WriteFile(indexPath, []byte(generateCatalogIndex(files)), 0o644); err != nil {
		fatal(err)
	}
	fmt.Printf("wrote %s\n", indexPath)
}

func generateAll(cat *tables.Catalog, p *parser.Parser) []docFile {
	return []docFile{
		generateItemsDoc(cat),
		generateLocationsDoc(cat),
		generateDilemmasDoc(cat),
		generateAngelDoc(cat),
		generateQuestsDoc(cat),
		generateCommandsDoc(p),
	}
}

func generateCatalogIndex(files []docFile) string {
	var b strings.Builder
	b.WriteString("# Data Catalogs\n\n")
	b.WriteString("Generated from the embedded tables using `go run ./cmd/docsgen`.\n\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("- [%s](./%s)\n", f.Title, f.Name))
	}
	return b.String()
}

func generateItemsDoc(cat *tables.Catalog) docFile {
	items := cat.Items()

	var b strings.Builder
	b.WriteString("# Items\n\n")
	b.WriteString("Source: `internal/tables/data/items.yaml`.\n\n")
	b.WriteString(fmt.Sprintf("Total items: **%d**.\n\n", len(items)))
	b.WriteString("| ID | Name | Category | Description |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, it := range items {
		b.WriteString("| ")
		b.WriteString(escape(it.ID))
		b.WriteString(" | ")
		b.WriteString(escape(it.Name))
		b.WriteString(" | ")
		b.WriteString(escape(it.Category))
		b.WriteString(" | ")
		b.WriteString(escape(it.Description))
		b.WriteString(" |\n")
	}

	return docFile{Name: "items.md", Title: "Items", Content: b.String()}
}

func generateLocationsDoc(cat *tables.Catalog) docFile {
	locs := cat.Locations()

	var b strings.Builder
	b.WriteString("# Locations\n\n")
	b.WriteString("Source: `internal/tables/data/locations.yaml` and `loot.yaml`.\n\n")
	b.WriteString(fmt.Sprintf("Total locations: **%d**.\n\n", len(locs)))
	b.WriteString("| Name | Risk | Risk Factor | Open | Description |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, l := range locs {
		b.WriteString("| ")
		b.WriteString(escape(l.Name))
		b.WriteString(" | ")
		b.WriteString(escape(l.Risk.String()))
		b.WriteString(" | ")
		b.WriteString(fmt.Sprintf("%.2f", l.Risk.RiskFactor()))
		b.WriteString(" | ")
		b.WriteString(yesNo(l.Available))
		b.WriteString(" | ")
		b.WriteString(escape(l.Description))
		b.WriteString(" |\n")
	}

	b.WriteString("\n## Loot Pools\n\n")
	b.WriteString("| Risk | Loot (weight) |\n")
	b.WriteString("| --- | --- |\n")
	for _, risk := range []game.RiskTier{game.RiskLow, game.RiskMedium, game.RiskHigh, game.RiskDeadly} {
		b.WriteString("| ")
		b.WriteString(escape(risk.String()))
		b.WriteString(" | ")
		b.WriteString(escape(formatLoot(cat, cat.LootPool(risk))))
		b.WriteString(" |\n")
	}

	return docFile{Name: "locations.md", Title: "Locations", Content: b.String()}
}

func generateDilemmasDoc(cat *tables.Catalog) docFile {
	dilemmas := cat.Dilemmas()

	var b strings.Builder
	b.WriteString("# Dilemmas\n\n")
	b.WriteString("Source: `internal/tables/data/dilemmas.yaml`.\n\n")
	b.WriteString(fmt.Sprintf("Total dilemmas: **%d**.\n\n", len(dilemmas)))
	b.WriteString("| ID | Title | Day | Option | Outcome | Stats | Effects |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, d := range dilemmas {
		day := "any"
		if pinned := cat.DilemmaDay(d.ID); pinned > 0 {
			day = fmt.Sprintf("%d", pinned)
		}
		for _, opt := range d.Options {
			b.WriteString("| ")
			b.WriteString(escape(d.ID))
			b.WriteString(" | ")
			b.WriteString(escape(d.Title))
			b.WriteString(" | ")
			b.WriteString(day)
			b.WriteString(" | ")
			b.WriteString(escape(opt.Label))
			b.WriteString(" | ")
			b.WriteString(escape(string(opt.Outcome)))
			b.WriteString(" | ")
			b.WriteString(escape(formatStatEffects(opt.StatEffects)))
			b.WriteString(" | ")
			b.WriteString(escape(formatEffects(opt.Effects)))
			b.WriteString(" |\n")
		}
	}

	return docFile{Name: "dilemmas.md", Title: "Dilemmas", Content: b.String()}
}

func generateAngelDoc(cat *tables.Catalog) docFile {
	var b strings.Builder
	b.WriteString("# A.N.G.E.L. Responses\n\n")
	b.WriteString("Source: `internal/tables/data/responses.yaml`. Used when no AI backend answers.\n\n")
	b.WriteString("| Mood | Canned Responses |\n")
	b.WriteString("| --- | --- |\n")
	for _, mood := range game.AllMoods() {
		b.WriteString("| ")
		b.WriteString(escape(string(mood)))
		b.WriteString(" | ")
		b.WriteString(fmt.Sprintf("%d", cat.ResponseCount(mood)))
		b.WriteString(" |\n")
	}

	return docFile{Name: "angel.md", Title: "A.N.G.E.L. Responses", Content: b.String()}
}

func generateQuestsDoc(cat *tables.Catalog) docFile {
	quests := cat.Quests()

	var b strings.Builder
	b.WriteString("# Quests\n\n")
	b.WriteString("Source: `internal/tables/data/quests.yaml`.\n\n")
	b.WriteString("| ID | Description |\n")
	b.WriteString("| --- | --- |\n")
	for _, q := range quests {
		b.WriteString("| ")
		b.WriteString(escape(q.ID))
		b.WriteString(" | ")
		b.WriteString(escape(q.Description))
		b.WriteString(" |\n")
	}

	return docFile{Name: "quests.md", Title: "Quests", Content: b.String()}
}

func generateCommandsDoc(p *parser.Parser) docFile {
	cmds := p.Commands()

	var b strings.Builder
	b.WriteString("# Console Commands\n\n")
	b.WriteString("Source: `internal/parser/registry.go` (`DefaultRegistry`).\n\n")
	b.WriteString(fmt.Sprintf("Total commands: **%d**.\n\n", len(cmds)))
	b.WriteString("| Usage | Aliases | Summary |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, c := range cmds {
		b.WriteString("| `")
		b.WriteString(escape(c.Usage))
		b.WriteString("` | ")
		b.WriteString(escape(strings.Join(c.Aliases, ", ")))
		b.WriteString(" | ")
		b.WriteString(escape(c.Summary))
		b.WriteString(" |\n")
	}

	return docFile{Name: "commands.md", Title: "Console Commands", Content: b.String()}
}

func formatLoot(cat *tables.Catalog, pool []tables.LootEntry) string {
	parts := make([]string, 0, len(pool))
	for _, e := range pool {
		parts = append(parts, fmt.Sprintf("%s (%d)", cat.ItemName(e.Item), e.Weight))
	}
	return strings.Join(parts, ", ")
}

func formatStatEffects(effects []game.StatEffect) string {
	parts := make([]string, 0, len(effects))
	for _, se := range effects {
		target := se.Target
		if target == "" {
			target = "everyone"
		}
		var deltas []string
		for _, d := range []struct {
			name string
			v    float64
		}{
			{"hunger", se.Hunger},
			{"thirst", se.Thirst},
			{"sanity", se.Sanity},
			{"health", se.Health},
		} {
			if d.v != 0 {
				deltas = append(deltas, fmt.Sprintf("%s %+g", d.name, d.v))
			}
		}
		parts = append(parts, fmt.Sprintf("%s: %s", target, strings.Join(deltas, " ")))
	}
	return strings.Join(parts, "; ")
}

func formatEffects(effects []game.Effect) string {
	parts := make([]string, 0, len(effects))
	for _, e := range effects {
		switch {
		case e.Item != "":
			parts = append(parts, fmt.Sprintf("%s %s x%d", e.Kind, e.Item, e.Quantity))
		case e.Quest != "":
			parts = append(parts, fmt.Sprintf("%s %s", e.Kind, e.Quest))
		default:
			parts = append(parts, string(e.Kind))
		}
	}
	return strings.Join(parts, ", ")
}

func escape(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "|", "\\|")
	v = strings.ReplaceAll(v, "\n", "<br>")
	return v
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

package console

import (
	"fmt"
	"strings"

	"github.com/appengine-ltd/bunker/internal/game"
)

func (a *App) render(e game.Event) {
	switch e.Kind {
	case game.EventPhaseChanged:
		a.printf("\n== Day %d: %s ==\n", e.Day, e.Text)
	case game.EventDayAdvanced:
		a.autosaveDue = true
	case game.EventGameOver:
		a.printf("\n*** %s ***\n", e.Text)
	case game.EventReportGenerated:
		if e.Status != nil {
			a.printReport(e.Status)
		}
	case game.EventMoodChanged:
		a.printf("A.N.G.E.L. shifts: %s.\n", e.Mood)
	case game.EventAngelResponse:
		a.printf("A.N.G.E.L. [%s]: %s\n", e.Mood, e.Text)
		if e.Angel != nil {
			for _, g := range e.Angel.Grants {
				a.printf("  + %d %s\n", g.Quantity, a.itemName(g.ItemID))
			}
		}
	case game.EventCharacterSent:
		if e.Expedition != nil {
			a.printf("%s heads out to %s (%s).\n", e.Character, e.Text, e.Expedition.ShortID())
		} else {
			a.printf("%s heads out to %s.\n", e.Character, e.Text)
		}
	case game.EventExplorationComplete:
		a.printf("%s\n", e.Text)
		if e.Expedition != nil {
			for _, item := range e.Expedition.Result.FoundItems {
				a.printf("  + %s\n", a.itemName(item))
			}
		}
	case game.EventDilemmaPresented:
		if e.Dilemma != nil {
			a.printDilemma(e.Dilemma)
		}
	case game.EventVotingStarted:
		a.printf("Voting is open for %s.\n", e.Text)
	case game.EventVoteCast:
		a.printf("Vote for %s (%.0f%% of votes).\n", e.Text, e.VoteShare*100)
	case game.EventChoiceMade:
		a.printf("Decided: %s.\n", e.Text)
		if e.Outcome != nil && e.Outcome.Description != "" {
			a.printf("%s\n", e.Outcome.Description)
		}
	case game.EventNightReport:
		if e.Night != nil {
			a.printNight(e.Night)
		}
	case game.EventQuestChanged:
		if e.Quest != nil {
			a.printf("Quest %s: %s.\n", e.Quest.ID, e.Quest.State)
		}
	}
}

func (a *App) printReport(r *game.StatusReport) {
	for _, entry := range r.Entries {
		state := "alive"
		switch {
		case !entry.Alive:
			state = "dead"
		case entry.Critical:
			state = "critical"
		}
		a.printf("  %-10s hunger %3.0f  thirst %3.0f  sanity %3.0f  health %3.0f  %s\n",
			entry.Name, entry.Hunger, entry.Thirst, entry.Sanity, entry.Health, state)
	}
	for _, w := range r.Warnings {
		a.printf("  ! %s\n", w)
	}
	a.printf("  %d of %d alive.\n", r.AliveCount, r.Total)
}

func (a *App) printDilemma(d *game.Dilemma) {
	a.printf("%s\n", strings.ToUpper(d.Title))
	if d.Description != "" {
		a.printf("%s\n", d.Description)
	}
	for i, opt := range d.Options {
		votes := ""
		if opt.Votes > 0 {
			votes = " (" + pluralVotes(opt.Votes) + ")"
		}
		a.printf("  %d) %s%s\n", i+1, opt.Label, votes)
	}
}

func pluralVotes(n int) string {
	if n == 1 {
		return "1 vote"
	}
	return fmt.Sprintf("%d votes", n)
}

func (a *App) printNight(n *game.NightReport) {
	if n.Nightmare {
		a.printf("Nightmares.\n")
	}
	a.printf("%s\n", n.Narrative)
	for _, line := range n.StatChanges {
		a.printf("  %s\n", line)
	}
	for _, name := range n.Deaths {
		a.printf("  %s did not wake up.\n", name)
	}
}

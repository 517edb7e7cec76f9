package game

import (
	"fmt"
	"log/slog"
)

type StatusEntry struct {
	Name     string
	Hunger   float64
	Thirst   float64
	Sanity   float64
	Health   float64
	Alive    bool
	Critical bool
	Injured  bool
}

type StatusReport struct {
	Day        int
	Entries    []StatusEntry
	Warnings   []string
	AliveCount int
	Total      int
}

type StatusReviewEngine struct {
	roster *FamilyRoster
	bus    *Bus
	log    *slog.Logger
	last   *StatusReport
}

func NewStatusReviewEngine(roster *FamilyRoster, bus *Bus, log *slog.Logger) *StatusReviewEngine {
	return &StatusReviewEngine{
		roster: roster,
		bus:    bus,
		log:    loggerOrDiscard(log).With("engine", "status"),
	}
}

func (s *StatusReviewEngine) LastReport() *StatusReport { return s.last }

// Generate snapshots the roster. It never mutates a character.
func (s *StatusReviewEngine) Generate(day int) *StatusReport {
	report := &StatusReport{Day: day}
	if s.roster == nil {
		s.log.Warn("no roster, empty status report", "day", day)
		s.last = report
		return report
	}

	for _, c := range s.roster.All() {
		entry := StatusEntry{
			Name:     c.Name,
			Hunger:   c.Hunger(),
			Thirst:   c.Thirst(),
			Sanity:   c.Sanity(),
			Health:   c.Health(),
			Alive:    c.IsAlive(),
			Critical: c.IsCritical(),
			Injured:  c.Injured,
		}
		report.Entries = append(report.Entries, entry)
		report.Total++

		if !entry.Alive {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s has died", c.Name))
			s.bus.Publish(Event{Kind: EventCriticalWarning, Day: day, Character: c.Name, Text: "dead"})
			continue
		}
		report.AliveCount++

		if entry.Critical {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s is in critical condition", c.Name))
			s.bus.Publish(Event{Kind: EventCriticalWarning, Day: day, Character: c.Name, Text: "critical"})
		}
		if c.IsInsane() {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s is losing their mind", c.Name))
		}
		if c.IsDehydrated() {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s is severely dehydrated", c.Name))
		}
	}

	s.last = report
	s.bus.Publish(Event{Kind: EventReportGenerated, Day: day, Status: report})
	return report
}

package game

import "log/slog"

type Phase string

const (
	PhaseStatusReview     Phase = "StatusReview"
	PhaseAngelInteraction Phase = "AngelInteraction"
	PhaseCityExploration  Phase = "CityExploration"
	PhaseDailyChoice      Phase = "DailyChoice"
	PhaseNightCycle       Phase = "NightCycle"
)

var phaseOrder = []Phase{
	PhaseStatusReview,
	PhaseAngelInteraction,
	PhaseCityExploration,
	PhaseDailyChoice,
	PhaseNightCycle,
}

func AllPhases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

func ParsePhase(raw string) (Phase, bool) {
	for _, p := range phaseOrder {
		if string(p) == raw {
			return p, true
		}
	}
	return "", false
}

// Next returns the phase after p and whether the cycle wrapped into a new day.
func (p Phase) Next() (Phase, bool) {
	for i, candidate := range phaseOrder {
		if candidate == p {
			if i == len(phaseOrder)-1 {
				return phaseOrder[0], true
			}
			return phaseOrder[i+1], false
		}
	}
	return phaseOrder[0], false
}

func (p Phase) Title() string {
	switch p {
	case PhaseStatusReview:
		return "Status Review"
	case PhaseAngelInteraction:
		return "A.N.G.E.L. Interaction"
	case PhaseCityExploration:
		return "City Exploration"
	case PhaseDailyChoice:
		return "Daily Choice"
	case PhaseNightCycle:
		return "Night Cycle"
	default:
		return string(p)
	}
}

// PhaseController is told when its phase starts and when it is completed.
type PhaseController interface {
	Begin(day int)
	End(day int)
}

type PhaseControllerFuncs struct {
	BeginFn func(day int)
	EndFn   func(day int)
}

func (f PhaseControllerFuncs) Begin(day int) {
	if f.BeginFn != nil {
		f.BeginFn(day)
	}
}

func (f PhaseControllerFuncs) End(day int) {
	if f.EndFn != nil {
		f.EndFn(day)
	}
}

// PhaseMachine is the five-state day cycle. It only moves when told to.
type PhaseMachine struct {
	current     Phase
	started     bool
	terminated  bool
	controllers map[Phase]PhaseController
	log         *slog.Logger
}

func NewPhaseMachine(log *slog.Logger) *PhaseMachine {
	return &PhaseMachine{
		current:     PhaseStatusReview,
		controllers: make(map[Phase]PhaseController),
		log:         loggerOrDiscard(log),
	}
}

func (m *PhaseMachine) Register(p Phase, c PhaseController) {
	m.controllers[p] = c
}

func (m *PhaseMachine) Current() Phase   { return m.current }
func (m *PhaseMachine) Started() bool    { return m.started }
func (m *PhaseMachine) Terminated() bool { return m.terminated }
func (m *PhaseMachine) Terminate()       { m.terminated = true }

// Enter makes p current and begins it.
func (m *PhaseMachine) Enter(p Phase, day int) {
	if m.terminated {
		return
	}
	m.current = p
	m.started = true
	c, ok := m.controllers[p]
	if !ok || c == nil {
		m.log.Warn("no controller for phase", "phase", p, "day", day)
		return
	}
	m.log.Info("phase begin", "phase", p, "day", day)
	c.Begin(day)
}

// Resume sets the current phase without beginning it, for save-load.
func (m *PhaseMachine) Resume(p Phase) {
	m.current = p
	m.started = true
	m.terminated = false
}

// Complete ends the current phase and reports the next one. It does not
// enter it; the caller decides whether the game continues.
func (m *PhaseMachine) Complete(day int) (Phase, bool) {
	if m.terminated || !m.started {
		return m.current, false
	}
	if c, ok := m.controllers[m.current]; ok && c != nil {
		c.End(day)
	} else {
		m.log.Warn("no controller for phase", "phase", m.current, "day", day)
	}
	return m.current.Next()
}

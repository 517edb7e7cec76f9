package game

type EventKind string

const (
	EventPhaseChanged        EventKind = "phase_changed"
	EventPhaseComplete       EventKind = "phase_complete"
	EventDayAdvanced         EventKind = "day_advanced"
	EventGameOver            EventKind = "game_over"
	EventReportGenerated     EventKind = "report_generated"
	EventCriticalWarning     EventKind = "critical_warning"
	EventMoodChanged         EventKind = "mood_changed"
	EventAngelResponse       EventKind = "angel_response"
	EventCharacterSent       EventKind = "character_sent"
	EventExplorationComplete EventKind = "exploration_complete"
	EventDilemmaPresented    EventKind = "dilemma_presented"
	EventVotingStarted       EventKind = "voting_started"
	EventVoteCast            EventKind = "vote_cast"
	EventChoiceMade          EventKind = "choice_made"
	EventDilemmaComplete     EventKind = "dilemma_complete"
	EventNightReport         EventKind = "night_report"
	EventCycleComplete       EventKind = "cycle_complete"
	EventQuestChanged        EventKind = "quest_changed"
)

// Event is a tagged notification. Kind says which payload fields are set.
type Event struct {
	Kind      EventKind
	Day       int
	Phase     Phase
	Character string
	Text      string
	Mood      Mood
	VoteShare float64

	Status     *StatusReport
	Angel      *AngelResponse
	Expedition *Expedition
	Dilemma    *Dilemma
	Option     *DilemmaOption
	Outcome    *ChoiceOutcome
	Night      *NightReport
	Quest      *Quest
}

type Handler func(Event)

type subscription struct {
	id      int
	kind    EventKind
	all     bool
	handler Handler
}

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine.
type Bus struct {
	nextID int
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for kind and returns its unsubscribe func.
func (b *Bus) Subscribe(kind EventKind, h Handler) func() {
	return b.add(subscription{kind: kind, handler: h})
}

// SubscribeAll registers h for every kind.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.add(subscription{all: true, handler: h})
}

func (b *Bus) add(s subscription) func() {
	if b == nil || s.handler == nil {
		return func() {}
	}
	b.nextID++
	s.id = b.nextID
	b.subs = append(b.subs, s)
	id := s.id
	return func() { b.remove(id) }
}

func (b *Bus) remove(id int) {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	// Handlers may unsubscribe while we iterate.
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	for _, s := range subs {
		if s.all || s.kind == e.Kind {
			s.handler(e)
		}
	}
}

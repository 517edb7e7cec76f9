package game

import "strings"

type QuestState string

const (
	QuestInactive  QuestState = "inactive"
	QuestActive    QuestState = "active"
	QuestCompleted QuestState = "completed"
	QuestFailed    QuestState = "failed"
)

func ParseQuestState(raw string) (QuestState, bool) {
	switch s := QuestState(strings.ToLower(strings.TrimSpace(raw))); s {
	case QuestInactive, QuestActive, QuestCompleted, QuestFailed:
		return s, true
	default:
		return "", false
	}
}

type Quest struct {
	ID          string
	Description string
	State       QuestState
}

// QuestLog tracks side objectives. Only active quests can finish, and
// finished quests stay finished.
type QuestLog struct {
	quests []*Quest
	bus    *Bus
}

func NewQuestLog(bus *Bus) *QuestLog {
	return &QuestLog{bus: bus}
}

func (q *QuestLog) Add(id, description string) bool {
	id = strings.TrimSpace(id)
	if q == nil || id == "" {
		return false
	}
	if _, ok := q.Get(id); ok {
		return false
	}
	q.quests = append(q.quests, &Quest{ID: id, Description: description, State: QuestInactive})
	return true
}

func (q *QuestLog) Get(id string) (*Quest, bool) {
	if q == nil {
		return nil, false
	}
	for _, quest := range q.quests {
		if quest.ID == id {
			return quest, true
		}
	}
	return nil, false
}

func (q *QuestLog) Start(id string) bool {
	return q.transition(id, QuestActive, QuestInactive)
}

func (q *QuestLog) Complete(id string) bool {
	return q.transition(id, QuestCompleted, QuestActive)
}

func (q *QuestLog) Fail(id string) bool {
	return q.transition(id, QuestFailed, QuestActive)
}

func (q *QuestLog) transition(id string, to, from QuestState) bool {
	quest, ok := q.Get(id)
	if !ok || quest.State != from {
		return false
	}
	quest.State = to
	copied := *quest
	q.bus.Publish(Event{Kind: EventQuestChanged, Text: quest.ID, Quest: &copied})
	return true
}

func (q *QuestLog) All() []Quest {
	if q == nil {
		return nil
	}
	out := make([]Quest, 0, len(q.quests))
	for _, quest := range q.quests {
		out = append(out, *quest)
	}
	return out
}

func (q *QuestLog) Replace(quests []Quest) {
	q.quests = nil
	for _, quest := range quests {
		if !q.Add(quest.ID, quest.Description) {
			continue
		}
		state, ok := ParseQuestState(string(quest.State))
		if !ok {
			state = QuestInactive
		}
		q.quests[len(q.quests)-1].State = state
	}
}

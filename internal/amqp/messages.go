package amqp

import (
	"encoding/json"
	"time"
)

// Record kinds carried in RecordEvent.Kind.
const (
	KindExpense      = "expense"
	KindIncome       = "income"
	KindFixedExpense = "fixed_expense"
	KindPayday       = "payday"
)

// Actions carried in RecordEvent.Action.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
	ActionSet     = "set"
)

// RecordEvent announces a ledger mutation. It only names the record;
// consumers that need the full row read it from the API.
type RecordEvent struct {
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	ID        int64     `json:"id,omitempty"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordEvent(kind, action string, id, amount int64) RecordEvent {
	return RecordEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is "<kind>.<action>".
func (e RecordEvent) RoutingKey() string {
	return e.Kind + "." + e.Action
}

func (e RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RecordEventFromJSON(data []byte) (RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return RecordEvent{}, err
	}
	return ev, nil
}

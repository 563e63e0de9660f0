// Package feed abstracts the backend's row-level change notifications
// so consumers can be tested against a fake source instead of a live
// service. Events are delivered at least once, in order per record id.
package feed

import (
	"context"
	"encoding/json"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one row-level change on a watched table. Record carries the
// full row for inserts and updates; deletes carry only RecordID.
type Event struct {
	Type     EventType       `json:"type"`
	Table    string          `json:"table"`
	RecordID string          `json:"record_id"`
	Record   json.RawMessage `json:"record,omitempty"`
}

// Handlers receives change events for one subscription. Nil handlers
// are skipped.
type Handlers struct {
	OnInsert func(record json.RawMessage)
	OnUpdate func(record json.RawMessage)
	OnDelete func(recordID string)
}

// Filter narrows a subscription to a single record. The zero value
// matches every row of the table.
type Filter struct {
	RecordID string
}

func (f *Filter) matches(ev Event) bool {
	if f == nil || f.RecordID == "" {
		return true
	}
	return ev.RecordID == f.RecordID
}

// Subscription is a live channel on the remote service. It must be
// closed when no longer needed or the channel leaks server-side.
type Subscription interface {
	Close() error
}

type Source interface {
	Subscribe(ctx context.Context, table string, filter *Filter, h Handlers) (Subscription, error)
}

// Deliver routes an event to the matching handler. Shared by every
// Source implementation so filter and dispatch semantics stay uniform.
func Deliver(h Handlers, filter *Filter, ev Event) {
	if !filter.matches(ev) {
		return
	}
	switch ev.Type {
	case EventInsert:
		if h.OnInsert != nil {
			h.OnInsert(ev.Record)
		}
	case EventUpdate:
		if h.OnUpdate != nil {
			h.OnUpdate(ev.Record)
		}
	case EventDelete:
		if h.OnDelete != nil {
			h.OnDelete(ev.RecordID)
		}
	}
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/market"
)

// memStore is an in-memory Store used to test the book in isolation.
type memStore struct {
	instruments map[int64]Instrument
	entries     map[int64]Entry
	schedule    *fee.Schedule
	nextInst    int64
	nextEntry   int64

	failAppend error
}

func newMemStore() *memStore {
	s := fee.DefaultSchedule()
	return &memStore{
		instruments: map[int64]Instrument{},
		entries:     map[int64]Entry{},
		schedule:    &s,
	}
}

func (m *memStore) CreateInstrument(_ context.Context, in Instrument) (int64, error) {
	m.nextInst++
	in.ID = m.nextInst
	m.instruments[in.ID] = in
	return in.ID, nil
}

func (m *memStore) GetInstrument(_ context.Context, id int64) (Instrument, error) {
	in, ok := m.instruments[id]
	if !ok {
		return Instrument{}, fmt.Errorf("instrument %d: %w", id, ErrNotFound)
	}
	return in, nil
}

func (m *memStore) ListInstruments(_ context.Context) ([]Instrument, error) {
	out := make([]Instrument, 0, len(m.instruments))
	for _, in := range m.instruments {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortIndex != out[j].SortIndex {
			return out[i].SortIndex < out[j].SortIndex
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) SetInstrumentStatus(_ context.Context, id int64, s market.Status, at time.Time) error {
	in, ok := m.instruments[id]
	if !ok {
		return fmt.Errorf("instrument %d: %w", id, ErrNotFound)
	}
	in.Status = s
	in.UpdatedAt = at
	m.instruments[id] = in
	return nil
}

func (m *memStore) SetSortOrder(_ context.Context, ids []int64) error {
	for _, id := range ids {
		if _, ok := m.instruments[id]; !ok {
			return fmt.Errorf("instrument %d: %w", id, ErrNotFound)
		}
	}
	for i, id := range ids {
		in := m.instruments[id]
		in.SortIndex = i + 1
		m.instruments[id] = in
	}
	return nil
}

func (m *memStore) DeleteInstrument(_ context.Context, id int64) error {
	delete(m.instruments, id)
	for eid, e := range m.entries {
		if e.InstrumentID == id {
			delete(m.entries, eid)
		}
	}
	return nil
}

func (m *memStore) AppendEntry(_ context.Context, e Entry) (int64, error) {
	if m.failAppend != nil {
		return 0, m.failAppend
	}
	m.nextEntry++
	e.ID = m.nextEntry
	m.entries[e.ID] = e
	return e.ID, nil
}

func (m *memStore) LatestEntry(ctx context.Context, instrumentID int64) (Entry, error) {
	list, _ := m.ListEntries(ctx, instrumentID)
	if len(list) == 0 {
		return Entry{}, fmt.Errorf("latest entry of %d: %w", instrumentID, ErrNotFound)
	}
	return list[len(list)-1], nil
}

func (m *memStore) ListEntries(_ context.Context, instrumentID int64) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.InstrumentID == instrumentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetEntry(_ context.Context, id int64) (Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return e, nil
}

func (m *memStore) DeleteEntry(_ context.Context, id int64) error {
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	delete(m.entries, id)
	return nil
}

func (m *memStore) AnnotateEntry(_ context.Context, id int64, at time.Time, note string) error {
	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	e.ActionTime = at
	e.Note = note
	m.entries[id] = e
	return nil
}

func (m *memStore) FeeSchedule(_ context.Context) (fee.Schedule, error) {
	if m.schedule == nil {
		return fee.Schedule{}, errors.New("fee schedule missing")
	}
	return *m.schedule, nil
}

func (m *memStore) UpdateFeeRates(_ context.Context, r fee.Rates) error {
	m.schedule.Defaults = r
	return nil
}

func (m *memStore) UpdateSegmentRates(_ context.Context, seg market.Segment, r fee.Rates) error {
	if m.schedule.Segments == nil {
		m.schedule.Segments = map[market.Segment]fee.Rates{}
	}
	m.schedule.Segments[seg] = r
	return nil
}

func (m *memStore) Close() error { return nil }

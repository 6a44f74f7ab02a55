// Package store implements the signal store (spec §4.3): an in-memory
// mapping from signal name to an ordered, typed time series, plus the
// stream sink that serialises a store to the §6 wire format for the
// downstream MDF/MF4 writer.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/JanSpindler/blf2mdf/format"
)

// ErrKindMismatch is a programming error: a push targeted an existing
// series with a value of a different kind than it was created with.
var ErrKindMismatch = errors.New("store: signal kind mismatch")

// Point is one (timestamp, value) sample. Value holds exactly one of the
// four scalar kinds, tagged by the owning SignalSeries.Kind.
type Point struct {
	Timestamp float64
	I64       int64
	U64       uint64
	F64       float64
	Str       string
}

// SignalSeries is one named signal's full time series plus optional unit
// and value-table metadata (spec §3). Kind is fixed at first insertion.
type SignalSeries struct {
	Name       string
	Kind       format.ValueKind
	Points     []Point
	Unit       string
	ValueTable map[int64]string
}

// SignalStore maps signal name to series (spec §3 "keys unique, insertion
// order irrelevant"). The zero value is not usable; use New.
type SignalStore struct {
	series map[string]*SignalSeries
	// order preserves first-insertion order only so output is
	// deterministic across runs on the same input; it carries no
	// semantic weight (spec says insertion order is irrelevant).
	order []string
}

// New returns an empty SignalStore.
func New() *SignalStore {
	return &SignalStore{series: make(map[string]*SignalSeries)}
}

func (s *SignalStore) getOrCreate(name string, kind format.ValueKind) (*SignalSeries, error) {
	ser, ok := s.series[name]
	if !ok {
		ser = &SignalSeries{Name: name, Kind: kind}
		s.series[name] = ser
		s.order = append(s.order, name)

		return ser, nil
	}

	if ser.Kind != kind {
		return nil, fmt.Errorf("%w: %s is %s, pushed %s", ErrKindMismatch, name, ser.Kind, kind)
	}

	return ser, nil
}

// PushI64 appends a signed-integer point, creating the series on first
// call. Panics (fail-fast per spec §4.3) if name already holds a
// different kind.
func (s *SignalStore) PushI64(name string, ts float64, v int64) {
	ser, err := s.getOrCreate(name, format.KindI64)
	if err != nil {
		panic(err)
	}

	ser.Points = append(ser.Points, Point{Timestamp: ts, I64: v})
}

// PushU64 appends an unsigned-integer point.
func (s *SignalStore) PushU64(name string, ts float64, v uint64) {
	ser, err := s.getOrCreate(name, format.KindU64)
	if err != nil {
		panic(err)
	}

	ser.Points = append(ser.Points, Point{Timestamp: ts, U64: v})
}

// PushF64 appends a floating-point point.
func (s *SignalStore) PushF64(name string, ts float64, v float64) {
	ser, err := s.getOrCreate(name, format.KindF64)
	if err != nil {
		panic(err)
	}

	ser.Points = append(ser.Points, Point{Timestamp: ts, F64: v})
}

// PushString appends a string point.
func (s *SignalStore) PushString(name string, ts float64, v string) {
	ser, err := s.getOrCreate(name, format.KindString)
	if err != nil {
		panic(err)
	}

	ser.Points = append(ser.Points, Point{Timestamp: ts, Str: v})
}

// SetUnit records (or idempotently replaces) a signal's unit string.
// Creates the series if it doesn't yet exist, defaulting its kind to F64;
// a later push with a different kind still fails fast via ErrKindMismatch.
func (s *SignalStore) SetUnit(name, unit string) {
	ser, ok := s.series[name]
	if !ok {
		ser = &SignalSeries{Name: name, Kind: format.KindF64}
		s.series[name] = ser
		s.order = append(s.order, name)
	}

	ser.Unit = unit
}

// SetValueTable records (or idempotently replaces) a signal's integer to
// label mapping.
func (s *SignalStore) SetValueTable(name string, table map[int64]string) {
	ser, ok := s.series[name]
	if !ok {
		ser = &SignalSeries{Name: name, Kind: format.KindI64}
		s.series[name] = ser
		s.order = append(s.order, name)
	}

	ser.ValueTable = table
}

// SignalCount returns the number of distinct series held.
func (s *SignalStore) SignalCount() int { return len(s.series) }

// Series returns the named series, or nil if it does not exist. Callers
// must not mutate the returned series.
func (s *SignalStore) Series(name string) *SignalSeries { return s.series[name] }

// Names returns all signal names in first-insertion order.
func (s *SignalStore) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)

	return out
}

// sortSeries stably sorts one series' points by timestamp (spec §4.3,
// §8 property 1).
func sortSeries(ser *SignalSeries) {
	sort.SliceStable(ser.Points, func(i, j int) bool {
		return ser.Points[i].Timestamp < ser.Points[j].Timestamp
	})
}

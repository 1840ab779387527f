// Package rolling keeps bounded, newest-first sample windows per named
// measurement channel and reports their running mean.
package rolling

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	DefaultMaxLen     = 250
	MeasurementMaxLen = 500
)

const (
	ChannelPD      = "pd"
	ChannelPDLeft  = "pd_l"
	ChannelPDRight = "pd_r"
	ChannelBridge  = "bridge"
	ChannelWidth   = "width"
	ChannelHeight  = "height"
)

// Store is not safe for concurrent use.
type Store struct {
	channels map[string][]float64
}

func NewStore() *Store {
	s := &Store{channels: make(map[string][]float64)}
	for _, name := range []string{ChannelPD, ChannelPDLeft, ChannelPDRight, ChannelBridge, ChannelWidth, ChannelHeight} {
		s.channels[name] = nil
	}
	return s
}

// AddSample inserts value at the front of the channel, evicts at most one
// sample from the back when the window exceeds maxLen and returns the mean
// of what is retained.
func (s *Store) AddSample(name string, value float64, maxLen int) float64 {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	values := append(s.channels[name], 0)
	copy(values[1:], values)
	values[0] = value

	if len(values) > maxLen {
		values = values[:len(values)-1]
	}
	s.channels[name] = values

	return stat.Mean(values, nil)
}

func (s *Store) Len(name string) int {
	return len(s.channels[name])
}

// Values returns a copy of the channel, newest first.
func (s *Store) Values(name string) []float64 {
	values := s.channels[name]
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

func (s *Store) Mean(name string) (float64, bool) {
	values := s.channels[name]
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

func (s *Store) Channels() []string {
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Reset() {
	for name := range s.channels {
		s.channels[name] = nil
	}
}

// Package lifecycle declares the status machines of the compliance registers.
package lifecycle

import (
	"fmt"
	"sort"

	appErrors "github.com/noah-isme/privacy-admin-api/pkg/errors"
)

// Machine is a finite set of statuses with an initial status, terminal
// statuses and the edges allowed between them.
type Machine[S ~string] struct {
	name     string
	initial  S
	terminal map[S]struct{}
	edges    map[S]map[S]struct{}
}

// New builds a machine. Terminal statuses may not have outgoing edges.
func New[S ~string](name string, initial S, transitions map[S][]S, terminal ...S) *Machine[S] {
	m := &Machine[S]{
		name:     name,
		initial:  initial,
		terminal: make(map[S]struct{}, len(terminal)),
		edges:    make(map[S]map[S]struct{}, len(transitions)),
	}
	for _, t := range terminal {
		m.terminal[t] = struct{}{}
	}
	for from, targets := range transitions {
		if _, ok := m.terminal[from]; ok {
			panic(fmt.Sprintf("lifecycle %s: terminal status %q has outgoing transitions", name, from))
		}
		set := make(map[S]struct{}, len(targets))
		for _, to := range targets {
			set[to] = struct{}{}
		}
		m.edges[from] = set
	}
	return m
}

// Name returns the record type the machine governs.
func (m *Machine[S]) Name() string { return m.name }

// Initial returns the status new records start in.
func (m *Machine[S]) Initial() S { return m.initial }

// IsTerminal reports whether no transition leaves the status.
func (m *Machine[S]) IsTerminal(s S) bool {
	_, ok := m.terminal[s]
	return ok
}

// Known reports whether the status belongs to the machine.
func (m *Machine[S]) Known(s S) bool {
	if s == m.initial || m.IsTerminal(s) {
		return true
	}
	if _, ok := m.edges[s]; ok {
		return true
	}
	for _, targets := range m.edges {
		if _, ok := targets[s]; ok {
			return true
		}
	}
	return false
}

// CanTransition reports whether to is directly reachable from from.
func (m *Machine[S]) CanTransition(from, to S) bool {
	targets, ok := m.edges[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Next lists the statuses reachable from s in lexical order.
func (m *Machine[S]) Next(s S) []S {
	targets := m.edges[s]
	out := make([]S, 0, len(targets))
	for to := range targets {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate returns an InvalidTransition error unless from -> to is allowed.
func (m *Machine[S]) Validate(from, to S) error {
	if !m.Known(to) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("%s status %q is not recognised", m.name, to))
	}
	if m.CanTransition(from, to) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("%s cannot move from %s to %s", m.name, from, to))
}

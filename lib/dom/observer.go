package dom

import "slices"

// MutationType identifies a MutationRecord kind.
type MutationType string

const (
	MutationAttributes MutationType = "attributes"
	MutationChildList  MutationType = "childList"
)

// MutationRecord describes one change.
type MutationRecord struct {
	Type          MutationType
	Target        *Node
	AttributeName string
	OldValue      *string
	Added         []*Node
	Removed       []*Node
}

// MutationObserverInit selects which changes an observation reports.
type MutationObserverInit struct {
	Attributes      bool
	AttributeFilter []string
	ChildList       bool
	Subtree         bool
}

// MutationObserver reports changes to observed nodes. Records are
// delivered synchronously, one per mutation.
type MutationObserver struct {
	callback func([]MutationRecord, *MutationObserver)
	targets  []*Node
}

type observation struct {
	observer *MutationObserver
	init     MutationObserverInit
}

// NewMutationObserver creates an observer calling fn for each change.
func NewMutationObserver(fn func([]MutationRecord, *MutationObserver)) *MutationObserver {
	return &MutationObserver{callback: fn}
}

// Observe starts reporting changes to target. Observing the same target
// again replaces the options.
func (o *MutationObserver) Observe(target *Node, init MutationObserverInit) {
	if len(init.AttributeFilter) > 0 {
		init.Attributes = true
	}
	for _, obs := range target.observers {
		if obs.observer == o {
			obs.init = init
			return
		}
	}
	target.observers = append(target.observers, &observation{observer: o, init: init})
	o.targets = append(o.targets, target)
}

// Disconnect stops all observations.
func (o *MutationObserver) Disconnect() {
	for _, t := range o.targets {
		t.observers = slices.DeleteFunc(t.observers, func(obs *observation) bool {
			return obs.observer == o
		})
	}
	o.targets = nil
}

func (n *Node) notify(rec MutationRecord) {
	direct := true
	for cur := n; cur != nil; cur = cur.parent {
		for _, obs := range slices.Clone(cur.observers) {
			if !direct && !obs.init.Subtree {
				continue
			}
			if obs.matches(rec) {
				obs.observer.callback([]MutationRecord{rec}, obs.observer)
			}
		}
		direct = false
	}
}

func (obs *observation) matches(rec MutationRecord) bool {
	switch rec.Type {
	case MutationAttributes:
		if !obs.init.Attributes {
			return false
		}
		return len(obs.init.AttributeFilter) == 0 || slices.Contains(obs.init.AttributeFilter, rec.AttributeName)
	case MutationChildList:
		return obs.init.ChildList
	}
	return false
}

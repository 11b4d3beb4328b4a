package pib

import (
	enc "github.com/named-data/go-pib/pkg/encoding"
)

// DbObserver is the interface PibDb calls into on mutation, per spec.md §9's
// design note ("re-architect as a trait/interface the DB calls into"). This
// keeps PibDb oblivious to PibValidator's type and avoids a cyclic
// ownership graph: PibDb holds a slice of DbObserver, PibValidator
// implements it and registers itself at construction.
type DbObserver interface {
	// OnUserChanged fires on any user insertion, deletion, or
	// management-certificate update (spec.md §4.1 "Events").
	OnUserChanged(userName string)
	// OnKeyDeleted fires only when a key row was actually removed.
	OnKeyDeleted(userName string, identity enc.Name, keyId enc.Component)
}

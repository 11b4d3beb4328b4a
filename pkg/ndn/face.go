package ndn

import (
	"time"

	enc "github.com/named-data/go-pib/pkg/encoding"
)

// InterestHandler is invoked for an Interest matching a registered filter.
// reply publishes the Data answering this Interest; a handler that does not
// call reply before returning leaves the Interest unanswered.
type InterestHandler func(interest Interest, rawInterest enc.Wire, sigCovered enc.Wire, reply func(result *EncodedData) error, deadline time.Time)

// Face is the network capability the PIB service lifecycle (spec.md §4.3)
// is handed at construction: registering a prefix makes it routable, and
// attaching a handler on a sub-prefix lets the PIB answer management
// Interests and mgmt-certificate fetches. Modeled as an injected
// abstraction (spec.md §9 "TPM and face as capabilities") so Pib can be
// exercised against an in-memory double.
type Face interface {
	// RegisterRoute announces prefix as reachable through this face.
	RegisterRoute(prefix enc.Name) error
	// UnregisterRoute withdraws a previously announced prefix.
	UnregisterRoute(prefix enc.Name) error
	// AttachHandler installs handler to answer Interests under prefix.
	AttachHandler(prefix enc.Name, handler InterestHandler) error
	// DetachHandler removes a previously installed handler.
	DetachHandler(prefix enc.Name) error
}

// Package lifecycle is the authoritative milestone status state machine:
// the legal (status, event) edges and the actor guard of each edge.
//
//	pending           --submit_proof--> payment_submitted
//	payment_submitted --approve------> approved
//	payment_submitted --reject-------> rejected
//	rejected          --submit_proof--> payment_submitted
//
// Every other pair is illegal. Deliverables are not part of the machine.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
)

// Event is an action that may move a milestone between statuses.
type Event string

const (
	EventSubmitProof Event = "submit_proof"
	EventApprove     Event = "approve"
	EventReject      Event = "reject"
)

// ErrIllegalTransition is reported together with common.ErrAuthorization.
var ErrIllegalTransition = errors.New("illegal status transition")

type edge struct {
	from  models.Status
	event Event
}

var transitions = map[edge]models.Status{
	{models.StatusPending, EventSubmitProof}:      models.StatusPaymentSubmitted,
	{models.StatusRejected, EventSubmitProof}:     models.StatusPaymentSubmitted,
	{models.StatusPaymentSubmitted, EventApprove}: models.StatusApproved,
	{models.StatusPaymentSubmitted, EventReject}:  models.StatusRejected,
}

// Next returns the status reached by applying event to from.
func Next(from models.Status, event Event) (models.Status, error) {
	to, ok := transitions[edge{from, event}]
	if !ok {
		return from, fmt.Errorf("%w: %w: %s on %s", common.ErrAuthorization, ErrIllegalTransition, event, from)
	}
	return to, nil
}

// CanApply reports whether event is legal from the given status.
func CanApply(from models.Status, event Event) bool {
	_, ok := transitions[edge{from, event}]
	return ok
}

// Authorize checks the actor guard of event against m: proofs come from the
// milestone's client, reviews from its owner.
func Authorize(event Event, actor models.Actor, m *models.Milestone) error {
	switch event {
	case EventSubmitProof:
		if actor.IsClient(m) {
			return nil
		}
	case EventApprove, EventReject:
		if actor.IsOwner(m) {
			return nil
		}
	}
	return fmt.Errorf("%w: actor %s may not %s milestone %s", common.ErrAuthorization, actor.ID, event, m.ID)
}

// Apply runs the guard and the transition for event on m. It does not mutate m.
func Apply(m *models.Milestone, event Event, actor models.Actor) (models.Status, error) {
	if err := Authorize(event, actor, m); err != nil {
		return m.Status, err
	}
	return Next(m.Status, event)
}

// DownloadAllowed reports whether the clean deliverable may be released.
func DownloadAllowed(m *models.Milestone) bool {
	return m.Status == models.StatusApproved && m.Deliverable != nil
}

// Decision is the freelancer's verdict on a submitted payment proof.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Event maps a decision to its state machine event.
func (d Decision) Event() (Event, error) {
	switch d {
	case DecisionApprove:
		return EventApprove, nil
	case DecisionReject:
		return EventReject, nil
	}
	return "", fmt.Errorf("%w: unknown decision %q", common.ErrValidation, string(d))
}

// Package audit is the append-only activity log of successful registry
// writes. It is separate from the AuditVerifier component: this log
// records what happened, the verifier answers queries about snapshots.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "procurement/pkg/domain"
)

// EventCategory classifies events for routing and retention.
type EventCategory string

const (
	// CategoryGovernance covers authority installs and threshold changes.
	CategoryGovernance EventCategory = "governance"
	// CategoryRegistry covers entity lifecycle writes.
	CategoryRegistry EventCategory = "registry"
	// CategoryVerification covers verifier requests and confirmations.
	CategoryVerification EventCategory = "verification"
)

// Event is emitted from service logic after a write commits.
type Event struct {
	ID          uuid.UUID
	Category    EventCategory
	Timestamp   time.Time
	Component   string
	Action      string
	Actor       id.Principal
	Subject     string
	BlockHeight uint64
	RequestID   string
	Detail      string
}

type Action string

const (
	EventAuthorityInstalled Action = "authority_installed"
	EventThresholdChanged   Action = "threshold_changed"
	EventFeeChanged         Action = "fee_changed"

	EventTenderCreated Action = "tender_created"
	EventTenderUpdated Action = "tender_updated"
	EventTenderClosed  Action = "tender_closed"

	EventBidderRegistered     Action = "bidder_registered"
	EventCriteriaSet          Action = "qualification_criteria_set"
	EventBidderQualified      Action = "bidder_qualified"
	EventBidderRejected       Action = "bidder_rejected"
	EventBidderStatusOverride Action = "bidder_status_overridden"

	EventSnapshotRecorded     Action = "audit_snapshot_recorded"
	EventVerificationRequest  Action = "verification_requested"
	EventVerificationApproved Action = "verification_confirmed"
)

var eventCategories = map[Action]EventCategory{
	EventAuthorityInstalled:   CategoryGovernance,
	EventThresholdChanged:     CategoryGovernance,
	EventFeeChanged:           CategoryGovernance,
	EventBidderStatusOverride: CategoryGovernance,

	EventSnapshotRecorded:     CategoryVerification,
	EventVerificationRequest:  CategoryVerification,
	EventVerificationApproved: CategoryVerification,
}

// Category returns the category for a; unknown actions are registry events.
func (a Action) Category() EventCategory {
	if cat, ok := eventCategories[a]; ok {
		return cat
	}
	return CategoryRegistry
}

package tracking

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// VerificationOutcome represents how a tracking verification ended
// ---------------------------------------------------------------------------

// VerificationOutcome records how the aggregator lookup for one shipment ended.
type VerificationOutcome string

const (
	// OutcomeVerified means the aggregator returned concrete scan data
	OutcomeVerified VerificationOutcome = "verified"
	// OutcomeNotFound means the aggregator has no data for the number
	OutcomeNotFound VerificationOutcome = "not_found"
	// OutcomeError means a transport failure prevented verification
	OutcomeError VerificationOutcome = "error"
	// OutcomeNoTrackingNumber means the shipment has no number to verify
	OutcomeNoTrackingNumber VerificationOutcome = "no_tracking_number"
)

// String returns the string representation of VerificationOutcome.
func (o VerificationOutcome) String() string {
	return string(o)
}

// TrackEvent is the latest scan event known to the aggregator.
type TrackEvent struct {
	Status   string
	Location string
	Time     *time.Time
}

// Evidence is what tracking verification learned about one shipment. It is
// derived per request and never persisted.
type Evidence struct {
	CarrierScanned bool
	Delivered      bool
	DeliveryDate   *time.Time
	LatestEvent    *TrackEvent
	Outcome        VerificationOutcome
}

// ErrorEvidence is the evidence recorded when verification itself failed.
// The reconciler treats it under the fail-open policy, never as verified.
func ErrorEvidence() Evidence {
	return Evidence{Outcome: OutcomeError}
}

// NoTrackingNumberEvidence short-circuits shipments that cannot be verified.
func NoTrackingNumberEvidence() Evidence {
	return Evidence{Outcome: OutcomeNoTrackingNumber}
}

// ClassifyTrackStatus maps the aggregator's latest status string onto Evidence.
// Matching is case-insensitive. The policy, in order:
//
//   - delivered                         -> scanned, delivered
//   - intransit / in_transit / pickup /
//     picked_up                         -> scanned
//   - undelivered / exception / alert   -> scanned (a carrier touched it,
//     even if something went wrong)
//   - pending / info_received /
//     not_found / anything else         -> not scanned
//
// A sub-status containing "picked up" forces scanned even when the primary
// status says otherwise: some carriers report the first physical scan only
// there.
func ClassifyTrackStatus(status, subStatus string, eventTime *time.Time, event *TrackEvent) Evidence {
	ev := Evidence{Outcome: OutcomeVerified, LatestEvent: event}

	switch normalizeTrackStatus(status) {
	case "delivered":
		ev.CarrierScanned = true
		ev.Delivered = true
		ev.DeliveryDate = eventTime
	case "intransit", "in_transit", "pickup", "picked_up":
		ev.CarrierScanned = true
	case "undelivered", "exception", "alert":
		ev.CarrierScanned = true
	case "notfound", "not_found", "":
		ev.Outcome = OutcomeNotFound
	default:
		// pending, info_received, expired, and anything unrecognized: a label
		// may exist but no carrier has the parcel.
	}

	if strings.Contains(strings.ToLower(subStatus), "picked up") {
		ev.CarrierScanned = true
	}

	return ev
}

func normalizeTrackStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

package tracker

import (
	"time"

	"github.com/shoptrack/backend/internal/domain/tracking"
)

// ---------------------------------------------------------------------------
// Aggregator API Wire Types
// ---------------------------------------------------------------------------

// trackRequest is one entry in the register/gettrackinfo request array.
type trackRequest struct {
	Number  string `json:"number"`
	Carrier int    `json:"carrier,omitempty"`
}

// apiResponse is the base response wrapper for all aggregator API calls.
type apiResponse struct {
	// Code is the aggregator result code (0 for success)
	Code    int           `json:"code"`
	Message string        `json:"message,omitempty"`
	Data    *responseData `json:"data,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *apiResponse) IsSuccess() bool {
	return r.Code == 0
}

type responseData struct {
	Accepted []acceptedTrack `json:"accepted,omitempty"`
	Rejected []rejectedTrack `json:"rejected,omitempty"`
}

type acceptedTrack struct {
	Number    string     `json:"number"`
	Carrier   int        `json:"carrier,omitempty"`
	TrackInfo *trackInfo `json:"track_info,omitempty"`
}

type rejectedTrack struct {
	Number string      `json:"number"`
	Error  rejectError `json:"error"`
}

type rejectError struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Aggregator rejection codes that carry control-flow meaning.
const (
	// rejectAlreadyRegistered on register means the number is tracked
	// already; treated as success.
	rejectAlreadyRegistered = -18019901
	// rejectNotRegistered on gettrackinfo means the number must be
	// registered before info is available.
	rejectNotRegistered = -18019902
)

type trackInfo struct {
	LatestStatus latestStatus `json:"latest_status"`
	LatestEvent  *wireEvent   `json:"latest_event,omitempty"`
}

type latestStatus struct {
	Status    string `json:"status"`
	SubStatus string `json:"sub_status,omitempty"`
}

type wireEvent struct {
	TimeISO     string `json:"time_iso"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// toEvidence classifies a track info payload into domain evidence.
func (t *trackInfo) toEvidence() tracking.Evidence {
	var eventTime *time.Time
	var event *tracking.TrackEvent
	if t.LatestEvent != nil {
		if parsed, err := time.Parse(time.RFC3339, t.LatestEvent.TimeISO); err == nil {
			eventTime = &parsed
		}
		event = &tracking.TrackEvent{
			Status:   t.LatestEvent.Description,
			Location: t.LatestEvent.Location,
			Time:     eventTime,
		}
	}
	return tracking.ClassifyTrackStatus(t.LatestStatus.Status, t.LatestStatus.SubStatus, eventTime, event)
}

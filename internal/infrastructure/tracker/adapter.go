// Package tracker adapts the carrier tracking aggregator API to the tracking
// domain's TrackingGateway port. Numbers unknown to the aggregator are
// registered on the fly and polled briefly before the lookup gives up.
package tracker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoptrack/backend/internal/domain/tracking"
	"github.com/shoptrack/backend/internal/infrastructure/httpclient"
)

// Adapter implements tracking.TrackingGateway against the aggregator API.
type Adapter struct {
	config *Config
	client *httpclient.Client
	logger *zap.Logger
}

// NewAdapter creates a tracker adapter with the given configuration.
func NewAdapter(config *Config, logger *zap.Logger) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := httpclient.New(httpclient.Config{
		Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		Headers: map[string]string{
			"17token": config.APIKey,
		},
	})

	return &Adapter{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// verifyState enumerates the phases of a single verification.
type verifyState int

const (
	stateQuerying verifyState = iota
	stateRegistering
	statePolling
	stateDone
	stateFailed
)

// Verify resolves carrier-side evidence for a tracking number. It never
// returns an error: transport or aggregator failures yield error-outcome
// evidence so the caller can fail open.
func (a *Adapter) Verify(ctx context.Context, trackingNumber, carrierCode string) tracking.Evidence {
	if trackingNumber == "" {
		return tracking.NoTrackingNumberEvidence()
	}

	carrier := CarrierID(carrierCode)
	evidence := tracking.Evidence{Outcome: tracking.OutcomeNotFound}
	pollsLeft := a.config.PollAttempts

	state := stateQuerying
	for {
		switch state {
		case stateQuerying:
			info, registered, err := a.getTrackInfo(ctx, trackingNumber, carrier)
			switch {
			case err != nil:
				a.logger.Warn("tracking info query failed",
					zap.String("tracking_number", trackingNumber),
					zap.Error(err))
				state = stateFailed
			case !registered:
				state = stateRegistering
			default:
				evidence = info.toEvidence()
				if evidence.Outcome == tracking.OutcomeNotFound {
					// Registered but no concrete status yet; the carrier may
					// populate data shortly, so poll before concluding.
					state = statePolling
				} else {
					state = stateDone
				}
			}

		case stateRegistering:
			if err := a.register(ctx, trackingNumber, carrier); err != nil {
				a.logger.Warn("tracking number registration failed",
					zap.String("tracking_number", trackingNumber),
					zap.Error(err))
				state = stateFailed
			} else {
				state = statePolling
			}

		case statePolling:
			if pollsLeft == 0 {
				state = stateDone
				break
			}
			pollsLeft--
			select {
			case <-ctx.Done():
				state = stateFailed
				continue
			case <-time.After(a.config.PollDelay):
			}
			info, registered, err := a.getTrackInfo(ctx, trackingNumber, carrier)
			if err != nil {
				state = stateFailed
				continue
			}
			// Registration may still be propagating; keep polling.
			if registered {
				evidence = info.toEvidence()
				if evidence.Outcome != tracking.OutcomeNotFound {
					state = stateDone
				}
			}

		case stateDone:
			return evidence

		case stateFailed:
			return tracking.ErrorEvidence()
		}
	}
}

// getTrackInfo queries the aggregator for the latest track info. The second
// return value is false when the number is not registered yet.
func (a *Adapter) getTrackInfo(ctx context.Context, trackingNumber string, carrier int) (*trackInfo, bool, error) {
	resp, err := a.client.Post(ctx, a.config.APIBaseURL+"/gettrackinfo",
		[]trackRequest{{Number: trackingNumber, Carrier: carrier}})
	if err != nil {
		return nil, false, fmt.Errorf("tracker: querying track info: %w", err)
	}

	var wire apiResponse
	if err := resp.DecodeJSON(&wire); err != nil {
		return nil, false, fmt.Errorf("tracker: decoding track info: %w", err)
	}
	if !wire.IsSuccess() {
		return nil, false, fmt.Errorf("tracker: aggregator error %d: %s", wire.Code, wire.Message)
	}
	if wire.Data == nil {
		return nil, false, fmt.Errorf("tracker: aggregator returned no data")
	}

	for _, rejected := range wire.Data.Rejected {
		if rejected.Number != trackingNumber {
			continue
		}
		if rejected.Error.Code == rejectNotRegistered {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("tracker: number rejected with code %d: %s",
			rejected.Error.Code, rejected.Error.Message)
	}
	for _, accepted := range wire.Data.Accepted {
		if accepted.Number == trackingNumber && accepted.TrackInfo != nil {
			return accepted.TrackInfo, true, nil
		}
	}

	// Accepted without track info yet behaves like an empty status.
	return &trackInfo{}, true, nil
}

// register submits the number for tracking. A rejection saying the number is
// already registered counts as success; any other rejection is logged and
// swallowed, because some carriers populate data asynchronously even after a
// rejected registration. Only transport-level failures return an error.
func (a *Adapter) register(ctx context.Context, trackingNumber string, carrier int) error {
	resp, err := a.client.Post(ctx, a.config.APIBaseURL+"/register",
		[]trackRequest{{Number: trackingNumber, Carrier: carrier}})
	if err != nil {
		return fmt.Errorf("tracker: registering number: %w", err)
	}

	var wire apiResponse
	if err := resp.DecodeJSON(&wire); err != nil {
		return fmt.Errorf("tracker: decoding registration: %w", err)
	}
	if !wire.IsSuccess() {
		return fmt.Errorf("tracker: aggregator error %d: %s", wire.Code, wire.Message)
	}
	if wire.Data == nil {
		return nil
	}

	for _, rejected := range wire.Data.Rejected {
		if rejected.Number != trackingNumber {
			continue
		}
		if rejected.Error.Code != rejectAlreadyRegistered {
			a.logger.Warn("tracking number registration rejected",
				zap.String("tracking_number", trackingNumber),
				zap.Int("reject_code", rejected.Error.Code),
				zap.String("reject_message", rejected.Error.Message))
		}
		return nil
	}
	return nil
}

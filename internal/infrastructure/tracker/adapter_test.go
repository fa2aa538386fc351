package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shoptrack/backend/internal/domain/tracking"
)

func testConfig(baseURL string) *Config {
	return &Config{
		APIKey:         "token",
		APIBaseURL:     baseURL,
		PollAttempts:   2,
		PollDelay:      time.Millisecond,
		TimeoutSeconds: 5,
	}
}

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(testConfig(baseURL), zap.NewNop())
	require.NoError(t, err)
	return adapter
}

func decodeNumbers(t *testing.T, r *http.Request) []trackRequest {
	t.Helper()
	var reqs []trackRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&reqs))
	return reqs
}

func trackInfoBody(number, status, subStatus string) string {
	return fmt.Sprintf(`{
		"code": 0,
		"data": {"accepted": [{
			"number": %q,
			"track_info": {
				"latest_status": {"status": %q, "sub_status": %q},
				"latest_event": {
					"time_iso": "2026-08-05T14:12:00Z",
					"description": "Arrived at facility",
					"location": "Portland, OR"
				}
			}
		}]}
	}`, number, status, subStatus)
}

func TestConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).Validate(), ErrConfigMissingAPIKey)

	config := &Config{APIKey: "token"}
	require.NoError(t, config.Validate())
	assert.Equal(t, DefaultAPIBaseURL, config.APIBaseURL)
	assert.Equal(t, 2, config.PollAttempts)
	assert.Equal(t, 3*time.Second, config.PollDelay)
}

func TestCarrierID(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"ups", 100002},
		{"UPS", 100002},
		{"ups_ground", 100002},
		{"fedex_home_delivery", 100003},
		{"stamps_com", 21051},
		{"some_regional_carrier", carrierAutoDetect},
		{"", carrierAutoDetect},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, CarrierID(tt.code))
		})
	}
}

func TestAdapter_VerifyRegisteredNumber(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("17token")
		require.Equal(t, "/gettrackinfo", r.URL.Path)
		reqs := decodeNumbers(t, r)
		require.Len(t, reqs, 1)
		assert.Equal(t, "T100", reqs[0].Number)
		assert.Equal(t, 100002, reqs[0].Carrier)
		fmt.Fprint(w, trackInfoBody("T100", "Delivered", ""))
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T100", "ups")

	assert.Equal(t, "token", gotToken)
	assert.Equal(t, tracking.OutcomeVerified, ev.Outcome)
	assert.True(t, ev.CarrierScanned)
	assert.True(t, ev.Delivered)
	require.NotNil(t, ev.LatestEvent)
	assert.Equal(t, "Arrived at facility", ev.LatestEvent.Status)
	assert.Equal(t, "Portland, OR", ev.LatestEvent.Location)
}

func TestAdapter_VerifyEmptyTrackingNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected for empty tracking number")
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "", "ups")
	assert.Equal(t, tracking.OutcomeNoTrackingNumber, ev.Outcome)
}

func TestAdapter_VerifyRegistersAndPolls(t *testing.T) {
	var registered atomic.Bool
	var infoCalls, registerCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gettrackinfo":
			infoCalls.Add(1)
			if !registered.Load() {
				fmt.Fprintf(w, `{"code":0,"data":{"rejected":[{"number":"T200","error":{"code":%d}}]}}`,
					rejectNotRegistered)
				return
			}
			fmt.Fprint(w, trackInfoBody("T200", "InTransit", ""))
		case "/register":
			registerCalls.Add(1)
			registered.Store(true)
			fmt.Fprint(w, `{"code":0,"data":{"accepted":[{"number":"T200"}]}}`)
		}
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T200", "usps")

	assert.Equal(t, tracking.OutcomeVerified, ev.Outcome)
	assert.True(t, ev.CarrierScanned)
	assert.False(t, ev.Delivered)
	assert.Equal(t, int32(1), registerCalls.Load())
	assert.Equal(t, int32(2), infoCalls.Load(), "initial query plus one poll")
}

func TestAdapter_VerifyRegistrationRejectionStillPolls(t *testing.T) {
	var registerCalls, infoCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gettrackinfo":
			if infoCalls.Add(1) == 1 {
				fmt.Fprintf(w, `{"code":0,"data":{"rejected":[{"number":"T250","error":{"code":%d}}]}}`,
					rejectNotRegistered)
				return
			}
			fmt.Fprint(w, trackInfoBody("T250", "InTransit", ""))
		case "/register":
			registerCalls.Add(1)
			fmt.Fprint(w, `{"code":0,"data":{"rejected":[{"number":"T250","error":{"code":-18019999,"message":"carrier cannot be detected"}}]}}`)
		}
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T250", "ups")

	assert.Equal(t, tracking.OutcomeVerified, ev.Outcome)
	assert.True(t, ev.CarrierScanned)
	assert.Equal(t, int32(1), registerCalls.Load())
	assert.Equal(t, int32(2), infoCalls.Load(), "rejected registration must still poll")
}

func TestAdapter_VerifyAcceptedWithoutStatusPolls(t *testing.T) {
	var infoCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gettrackinfo":
			if infoCalls.Add(1) == 1 {
				fmt.Fprint(w, `{"code":0,"data":{"accepted":[{"number":"T260"}]}}`)
				return
			}
			fmt.Fprint(w, trackInfoBody("T260", "InTransit", ""))
		case "/register":
			t.Error("number already accepted, no registration expected")
		}
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T260", "ups")

	assert.Equal(t, tracking.OutcomeVerified, ev.Outcome)
	assert.True(t, ev.CarrierScanned)
	assert.Equal(t, int32(2), infoCalls.Load(), "accepted without status must poll, not conclude")
}

func TestAdapter_VerifyAlreadyRegisteredRejectionIsSuccess(t *testing.T) {
	first := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gettrackinfo":
			if first {
				first = false
				fmt.Fprintf(w, `{"code":0,"data":{"rejected":[{"number":"T300","error":{"code":%d}}]}}`,
					rejectNotRegistered)
				return
			}
			fmt.Fprint(w, trackInfoBody("T300", "pickup", ""))
		case "/register":
			fmt.Fprintf(w, `{"code":0,"data":{"rejected":[{"number":"T300","error":{"code":%d}}]}}`,
				rejectAlreadyRegistered)
		}
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T300", "ups")
	assert.Equal(t, tracking.OutcomeVerified, ev.Outcome)
	assert.True(t, ev.CarrierScanned)
}

func TestAdapter_VerifyPollExhaustionReturnsNotFound(t *testing.T) {
	var infoCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gettrackinfo":
			if infoCalls.Add(1) == 1 {
				fmt.Fprintf(w, `{"code":0,"data":{"rejected":[{"number":"T400","error":{"code":%d}}]}}`,
					rejectNotRegistered)
				return
			}
			fmt.Fprint(w, trackInfoBody("T400", "NotFound", ""))
		case "/register":
			fmt.Fprint(w, `{"code":0,"data":{"accepted":[{"number":"T400"}]}}`)
		}
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T400", "")

	assert.Equal(t, tracking.OutcomeNotFound, ev.Outcome)
	assert.False(t, ev.CarrierScanned)
	assert.Equal(t, int32(3), infoCalls.Load(), "initial query plus two polls")
}

func TestAdapter_VerifyTransportFailureYieldsErrorEvidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T500", "ups")
	assert.Equal(t, tracking.OutcomeError, ev.Outcome)
}

func TestAdapter_VerifyAggregatorErrorCodeYieldsErrorEvidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":401,"message":"invalid token"}`)
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T600", "ups")
	assert.Equal(t, tracking.OutcomeError, ev.Outcome)
}

func TestAdapter_VerifyPickedUpSubStatusCountsAsScanned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, trackInfoBody("T700", "undelivered", "Package picked up by carrier"))
	}))
	defer server.Close()

	ev := newTestAdapter(t, server.URL).Verify(context.Background(), "T700", "fedex")
	assert.True(t, ev.CarrierScanned)
}

func TestAdapter_VerifyContextCancelledDuringPoll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gettrackinfo":
			fmt.Fprintf(w, `{"code":0,"data":{"rejected":[{"number":"T800","error":{"code":%d}}]}}`,
				rejectNotRegistered)
		case "/register":
			fmt.Fprint(w, `{"code":0,"data":{"accepted":[{"number":"T800"}]}}`)
		}
	}))
	defer server.Close()

	adapter, err := NewAdapter(&Config{
		APIKey:         "token",
		APIBaseURL:     server.URL,
		PollAttempts:   2,
		PollDelay:      time.Hour,
		TimeoutSeconds: 5,
	}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := adapter.Verify(ctx, "T800", "ups")
	assert.Equal(t, tracking.OutcomeError, ev.Outcome)
}

package httplog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitOne(t *testing.T, opts Options, snap *Snapshot) map[string]any {
	t.Helper()
	sink := &captureSink{}
	i := New(opts, sink)

	pc, err := i.OnRequestStart(snap)
	require.NoError(t, err)

	done := *snap
	if done.Status == 0 {
		done.Status = 200
	}
	require.NoError(t, i.OnResponseReady(&done, pc))

	recs := sink.records(t)
	require.Len(t, recs, 1)
	return recs[0]
}

func TestAPIVersionFromAcceptHeader(t *testing.T) {
	rec := emitOne(t, Options{}, &Snapshot{
		Method:         "GET",
		Path:           "/",
		RequestHeaders: []Header{{Key: "accept", Value: "application/vnd.api.v2+json"}},
	})
	assert.Equal(t, "application/vnd.api.v2+json", rec["api_version"])

	rec = emitOne(t, Options{}, getSnapshot())
	assert.Equal(t, "N/A", rec["api_version"])
}

func TestAPIVersionHeaderLookupIsCaseInsensitive(t *testing.T) {
	rec := emitOne(t, Options{}, &Snapshot{
		Method:         "GET",
		Path:           "/",
		RequestHeaders: []Header{{Key: "Accept", Value: "application/json"}},
	})
	assert.Equal(t, "application/json", rec["api_version"])
}

func TestHandlerRequiresBothIdentities(t *testing.T) {
	rec := emitOne(t, Options{}, &Snapshot{
		Method: "GET",
		Path:   "/",
		Assigns: map[string]any{
			AssignController: "UserController",
			AssignAction:     "show",
		},
	})
	assert.Equal(t, "UserController#show", rec["handler"])

	rec = emitOne(t, Options{}, &Snapshot{
		Method:  "GET",
		Path:    "/",
		Assigns: map[string]any{AssignController: "UserController"},
	})
	assert.Equal(t, "N/A", rec["handler"])
}

func TestDebugFieldsFollowLevelByDefault(t *testing.T) {
	snap := &Snapshot{
		Method: "GET",
		Path:   "/",
		RequestHeaders: []Header{
			{Key: "x-forwarded-for", Value: "10.0.0.1, 10.0.0.2"},
			{Key: "user-agent", Value: "curl/8.0"},
		},
		Params: map[string]any{"q": "x"},
	}

	rec := emitOne(t, Options{Level: LevelInfo}, snap)
	assert.NotContains(t, rec, "client_ip")
	assert.NotContains(t, rec, "client_version")
	assert.NotContains(t, rec, "params")

	rec = emitOne(t, Options{Level: LevelDebug}, snap)
	assert.Equal(t, "10.0.0.1", rec["client_ip"])
	assert.Equal(t, "curl/8.0", rec["client_version"])
	assert.Equal(t, map[string]any{"q": "x"}, rec["params"])

	// the deprecated warn alias counts as debug
	rec = emitOne(t, Options{Level: LevelWarn}, snap)
	assert.Contains(t, rec, "params")
}

func TestDebugOverrideWinsOverLevel(t *testing.T) {
	snap := &Snapshot{Method: "GET", Path: "/", Params: map[string]any{"q": "x"}}

	rec := emitOne(t, Options{Level: LevelDebug, IncludeDebug: DebugOff}, snap)
	assert.NotContains(t, rec, "params")
	assert.NotContains(t, rec, "client_ip")

	rec = emitOne(t, Options{Level: LevelInfo, IncludeDebug: DebugOn}, snap)
	assert.Contains(t, rec, "params")
	assert.Equal(t, "N/A", rec["client_ip"])
	assert.Equal(t, "N/A", rec["client_version"])
}

func TestClientIPTakesFirstForwardedToken(t *testing.T) {
	rec := emitOne(t, Options{IncludeDebug: DebugOn}, &Snapshot{
		Method:         "GET",
		Path:           "/",
		RequestHeaders: []Header{{Key: "x-forwarded-for", Value: "203.0.113.7,198.51.100.2"}},
	})
	assert.Equal(t, "203.0.113.7", rec["client_ip"])
}

func TestClientVersionPrefersClientVersionHeader(t *testing.T) {
	rec := emitOne(t, Options{IncludeDebug: DebugOn}, &Snapshot{
		Method: "GET",
		Path:   "/",
		RequestHeaders: []Header{
			{Key: "x-client-version", Value: "ios/3.2.1"},
			{Key: "user-agent", Value: "curl/8.0"},
		},
	})
	assert.Equal(t, "ios/3.2.1", rec["client_version"])
}

func TestFilteredParamsInDebugRecord(t *testing.T) {
	rec := emitOne(t, Options{
		Level:        LevelDebug,
		FilteredKeys: []string{"password"},
	}, &Snapshot{
		Method: "POST",
		Path:   "/",
		Params: map[string]any{"password": "x", "user": "y"},
	})

	params := rec["params"].(map[string]any)
	assert.Equal(t, FilteredValue, params["password"])
	assert.Equal(t, "y", params["user"])
}

func TestRequestIDRoundTrips(t *testing.T) {
	rec := emitOne(t, Options{}, &Snapshot{Method: "GET", Path: "/", RequestID: "req-123"})
	assert.Equal(t, "req-123", rec["request_id"])
}

func TestStatusPresentWhenHostAlreadyAssignedIt(t *testing.T) {
	sink := &captureSink{}
	i := New(Options{ShouldLogRequest: func(*Snapshot) bool { return true }}, sink)

	// host assigned a status before request-phase logging ran
	_, err := i.OnRequestStart(&Snapshot{Method: "GET", Path: "/", Status: 302})
	require.NoError(t, err)

	rec := sink.records(t)[0]
	assert.Equal(t, "request", rec["phase"])
	assert.Equal(t, float64(302), rec["status"])
}

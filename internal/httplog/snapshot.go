package httplog

import "strings"

// Header is a single header pair. Keys are stored lowercased so lookups
// stay cheap; order follows the host's view of the wire.
type Header struct {
	Key   string
	Value string
}

// Assigns keys the interceptor understands. Hosts that can name the
// handler for an exchange put its identity under these keys.
const (
	AssignController = "controller"
	AssignAction     = "action"
)

// Snapshot is the read-only view of an exchange the host hands to the
// interceptor at each phase. The interceptor never mutates it. Status is
// zero until the host has assigned one, which is what makes the status
// field absent from request-phase records.
type Snapshot struct {
	Method          string
	Path            string
	RequestHeaders  []Header
	ResponseHeaders []Header
	Status          int
	Params          any
	Assigns         map[string]any
	RequestID       string
}

// RequestHeader returns the first value of a request header, matched
// case-insensitively.
func (s *Snapshot) RequestHeader(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, h := range s.RequestHeaders {
		if strings.ToLower(h.Key) == key {
			return h.Value, true
		}
	}
	return "", false
}

// ResponseHeader is the response-side counterpart of RequestHeader.
func (s *Snapshot) ResponseHeader(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, h := range s.ResponseHeaders {
		if strings.ToLower(h.Key) == key {
			return h.Value, true
		}
	}
	return "", false
}

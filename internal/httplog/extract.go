package httplog

import (
	"fmt"
	"strings"
)

const notAvailable = "N/A"

// Phase names as they appear in emitted records.
const (
	PhaseRequest  = "request"
	PhaseResponse = "response"
)

const dateTimeLayout = "2006-01-02T15:04:05Z"

// buildRecord assembles the field set for one phase. The phase is decided
// by the entry point that triggered the build, not by inspecting status.
func (i *Interceptor) buildRecord(snap *Snapshot, pc *PhaseContext, phase string) map[string]any {
	opts := pc.opts
	rec := map[string]any{
		"log_type":    "http",
		"date_time":   i.now().UTC().Format(dateTimeLayout),
		"duration":    i.duration(pc),
		"method":      snap.Method,
		"path":        snap.Path,
		"request_id":  nullableString(snap.RequestID),
		"phase":       phase,
		"api_version": apiVersion(snap),
		"handler":     handlerName(snap),
	}
	if snap.Status != 0 {
		rec["status"] = snap.Status
	}
	if debugActive(opts) {
		rec["client_ip"] = clientIP(snap)
		rec["client_version"] = clientVersion(snap)
		rec["params"] = Filter(snap.Params, pc.filtered)
	}
	if opts.ExtraAttributes != nil {
		// merged last on purpose: extras may shadow any default field
		for k, v := range opts.ExtraAttributes(snap) {
			rec[k] = v
		}
	}
	for _, k := range opts.SuppressedKeys {
		delete(rec, k)
	}
	return rec
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// debugActive decides whether the verbose fields (client_ip,
// client_version, params) are included. The override wins when set;
// otherwise the level decides, with the deprecated warn alias counting as
// debug.
func debugActive(opts Options) bool {
	switch opts.IncludeDebug {
	case DebugOn:
		return true
	case DebugOff:
		return false
	}
	return opts.Level == LevelDebug || opts.Level == LevelWarn
}

func apiVersion(snap *Snapshot) string {
	if v, ok := snap.RequestHeader("accept"); ok && v != "" {
		return v
	}
	return notAvailable
}

// handlerName is capability-based: both identities must be present.
func handlerName(snap *Snapshot) string {
	controller, _ := snap.Assigns[AssignController].(string)
	action, _ := snap.Assigns[AssignAction].(string)
	if controller != "" && action != "" {
		return fmt.Sprintf("%s#%s", controller, action)
	}
	return notAvailable
}

// clientIP takes the first comma-separated token of x-forwarded-for.
// No whitespace trimming beyond the split.
func clientIP(snap *Snapshot) string {
	fwd, ok := snap.RequestHeader("x-forwarded-for")
	if !ok || fwd == "" {
		return notAvailable
	}
	return strings.SplitN(fwd, ",", 2)[0]
}

func clientVersion(snap *Snapshot) string {
	if v, ok := snap.RequestHeader("x-client-version"); ok && v != "" {
		return v
	}
	if v, ok := snap.RequestHeader("user-agent"); ok && v != "" {
		return v
	}
	return notAvailable
}

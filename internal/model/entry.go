package model

import (
	"encoding/json"
	"time"
)

const (
	LogTypeHTTP  = "http"
	LogTypeError = "error"
)

const (
	PhaseRequest  = "request"
	PhaseResponse = "response"
)

// Entry is one emitted log line as persisted by the repositories. The
// indexed columns are lifted out of the record for querying; Record keeps
// the full rendered line so nothing is lost to the schema.
type Entry struct {
	ID         string          `json:"id" bson:"_id" db:"id"`
	RequestID  string          `json:"request_id,omitempty" bson:"request_id,omitempty" db:"request_id"`
	LogType    string          `json:"log_type" bson:"log_type" db:"log_type"`
	Phase      string          `json:"phase,omitempty" bson:"phase,omitempty" db:"phase"`
	Level      string          `json:"level" bson:"level" db:"level"`
	Timestamp  time.Time       `json:"timestamp" bson:"timestamp" db:"timestamp"`
	Method     string          `json:"method,omitempty" bson:"method,omitempty" db:"method"`
	Path       string          `json:"path,omitempty" bson:"path,omitempty" db:"path"`
	Status     int             `json:"status,omitempty" bson:"status,omitempty" db:"status"`
	Duration   float64         `json:"duration,omitempty" bson:"duration,omitempty" db:"duration"`
	Handler    string          `json:"handler,omitempty" bson:"handler,omitempty" db:"handler"`
	APIVersion string          `json:"api_version,omitempty" bson:"api_version,omitempty" db:"api_version"`
	Record     json.RawMessage `json:"record" bson:"record" db:"record"`
}

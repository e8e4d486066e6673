package migrations

import "fmt"

// PostgreSQL migrations
var PostgresSchema = `
CREATE TABLE IF NOT EXISTS log_entry (
    id UUID PRIMARY KEY,
    request_id TEXT,
    log_type VARCHAR(10) NOT NULL, -- 'http' or 'error'
    phase VARCHAR(10),             -- 'request' or 'response'
    level VARCHAR(10) NOT NULL,
    timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
    method VARCHAR(10),
    path TEXT,
    status INTEGER,
    duration DOUBLE PRECISION,
    handler TEXT,
    api_version TEXT,
    record JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_log_entry_request_id ON log_entry(request_id);
CREATE INDEX IF NOT EXISTS idx_log_entry_log_type ON log_entry(log_type);
CREATE INDEX IF NOT EXISTS idx_log_entry_phase ON log_entry(phase);
CREATE INDEX IF NOT EXISTS idx_log_entry_timestamp ON log_entry(timestamp);
`

// Oracle migrations
var OracleSchema = `
BEGIN
    EXECUTE IMMEDIATE 'CREATE TABLE log_entry (
        id VARCHAR2(36) PRIMARY KEY,
        request_id VARCHAR2(64),
        log_type VARCHAR2(10) NOT NULL,
        phase VARCHAR2(10),
        log_level VARCHAR2(10) NOT NULL,
        timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
        method VARCHAR2(10),
        path CLOB,
        status NUMBER,
        duration BINARY_DOUBLE,
        handler CLOB,
        api_version CLOB,
        record CLOB NOT NULL
    )';
EXCEPTION
    WHEN OTHERS THEN
        IF SQLCODE != -955 THEN
            RAISE;
        END IF;
END;
/

CREATE INDEX idx_log_entry_request_id ON log_entry(request_id);
CREATE INDEX idx_log_entry_log_type ON log_entry(log_type);
CREATE INDEX idx_log_entry_timestamp ON log_entry(timestamp);
`

// Couchbase indexes
func GetCouchbaseIndexes(bucketName string) []string {
	return []string{
		fmt.Sprintf("CREATE PRIMARY INDEX ON `%s`", bucketName),
		fmt.Sprintf("CREATE INDEX idx_entries_request_id ON `%s`(request_id)", bucketName),
		fmt.Sprintf("CREATE INDEX idx_entries_log_type ON `%s`(log_type)", bucketName),
		fmt.Sprintf("CREATE INDEX idx_entries_phase ON `%s`(phase)", bucketName),
		fmt.Sprintf("CREATE INDEX idx_entries_timestamp ON `%s`(timestamp)", bucketName),
	}
}

package audit

// schema initializes the invocation trail. Idempotent, applied on every Open.
const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	id TEXT PRIMARY KEY,
	timestamp DATETIME NOT NULL,
	platform TEXT NOT NULL,
	project_id TEXT NOT NULL,
	issue_id INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	success INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_invocations_timestamp ON invocations(timestamp);
CREATE INDEX IF NOT EXISTS idx_invocations_issue ON invocations(project_id, issue_id);
`

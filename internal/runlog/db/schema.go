package db

import _ "embed"

//go:embed schema.sql
var Schema string

const (
	RUN_STATUS_RUNNING   = "running"
	RUN_STATUS_COMPLETED = "completed"
	RUN_STATUS_ABORTED   = "aborted"
)

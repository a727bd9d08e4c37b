package sql

import _ "embed"

// Schema creates the tasks table and its indexes. Every statement is
// idempotent so it can run on each startup.
//
//go:embed schema.sql
var Schema string

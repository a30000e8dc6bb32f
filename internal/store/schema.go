package store

import _ "embed"

// Schema is the DDL of the two relations as the ETL pipeline creates them.
// The dashboard never runs it; seed tooling and integration tests do.
//
//go:embed schema.sql
var Schema string

// Package database persists projects and their indexed files to SQLite.
// The file rows are a durable mirror of the in-memory index; on restart the
// index is rebuilt by scanning, not trusted from rows.
package database

// Package handlers implements the HTTP API: project CRUD, scan triggers,
// index reads, watch control and version resolution.
package handlers

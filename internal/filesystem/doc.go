// Package filesystem provides filesystem operations with retry logic for
// NFS stale file handles. VFX project roots typically live on network
// shares, where a rescan racing an exporting server can surface ESTALE.
package filesystem

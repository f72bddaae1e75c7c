// Package indexstore holds the in-memory file index, one isolated index per
// project. Writers (scanner reconciles, watcher deltas) are serialized per
// project; readers always observe a complete snapshot, never a partially
// applied mutation.
package indexstore

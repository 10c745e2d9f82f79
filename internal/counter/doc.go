// Package counter persists the snapshot sequence number used to name
// counter-based archives. Updates are serialized with a file lock and
// written via rename so the value survives concurrent or interrupted runs.
package counter

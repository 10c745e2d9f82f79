// Package lock implements a flock-based advisory lock keyed by a target
// path. snapkit uses it to serialize snapshot runs on a repository and to
// protect the snapshot counter's read-modify-write cycle against concurrent
// invocations, with recovery for locks abandoned by dead processes.
package lock

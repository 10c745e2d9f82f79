// Package archive creates zip snapshots of a working tree and prunes old
// counter-named archives beyond the retention window.
package archive

// Package config defines snapkit's settings and the places they come from.
// Every path that was once a hard-coded literal in the original scripts
// (the desktop snapshot folder, the counter file, the excluded directory
// names, the icon output directory) is a documented, overridable field
// here. Values layer in a fixed precedence: built-in defaults, then the
// .snapkit.yaml file, then SNAPKIT_* environment variables, then flags.
package config

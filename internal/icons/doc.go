// Package icons renders placeholder app-icon PNGs at the fixed set of
// sizes an iOS asset catalog requires.
package icons

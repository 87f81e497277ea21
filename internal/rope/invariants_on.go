//go:build invariants

package rope

// invariantsEnabled is true if we were built with the "invariants" tag.
const invariantsEnabled = true

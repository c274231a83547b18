package vehicle

import "strings"

// SegmentCount is the number of segments in a vehicle identifier.
const SegmentCount = 4

// segmentSpec describes the fixed format of one identifier segment.
type segmentSpec struct {
	length  int
	letters bool // letters when true, digits otherwise
}

// Identifier format: 2 letters, 2 digits, 2 letters, 4 digits
// (e.g. KA-12-AB-3456).
var segmentSpecs = [SegmentCount]segmentSpec{
	{length: 2, letters: true},
	{length: 2, letters: false},
	{length: 2, letters: true},
	{length: 4, letters: false},
}

// SegmentLength returns the required length of the segment at index.
// Panics if index is out of range, like a slice access would.
func SegmentLength(index int) int {
	return segmentSpecs[index].length
}

// Composer accumulates a vehicle identifier as the operator types.
//
// Partially filled segments are a normal, expected intermediate state, not a
// fault: no method returns an error for short input. Validity is re-derived
// on every mutation and read with Valid.
type Composer struct {
	segments [SegmentCount]string
}

// SetSegment replaces the segment at index with a sanitized form of raw:
// characters outside the segment's alphabet are stripped, the result is
// truncated to the segment's length, and letter segments are uppercased.
//
// It reports whether the segment is now at full length, which the caller may
// use to advance input focus. Focus movement is a UI concern and deliberately
// not tracked here.
func (c *Composer) SetSegment(index int, raw string) (full bool) {
	spec := segmentSpecs[index]
	c.segments[index] = sanitize(raw, spec)
	return len(c.segments[index]) == spec.length
}

// Segment returns the current contents of the segment at index.
func (c *Composer) Segment(index int) string {
	return c.segments[index]
}

// Valid reports whether every segment is at exactly its required length.
// Sanitization in SetSegment guarantees the character classes, so length is
// the whole check.
func (c *Composer) Valid() bool {
	for i, spec := range segmentSpecs {
		if len(c.segments[i]) != spec.length {
			return false
		}
	}
	return true
}

// String composes the identifier in wire form, e.g. "KA-12-AB-3456".
// The result is only meaningful when Valid reports true.
func (c *Composer) String() string {
	return strings.Join(c.segments[:], "-")
}

// Reset clears all segments.
func (c *Composer) Reset() {
	c.segments = [SegmentCount]string{}
}

// sanitize strips disallowed characters, truncates, and uppercases letters.
func sanitize(raw string, spec segmentSpec) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == spec.length {
			break
		}
		switch {
		case spec.letters && r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case spec.letters && r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case !spec.letters && r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

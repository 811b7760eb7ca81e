// Package subtitle serializes recognized speech segments into SubRip files,
// dropping empty and known-hallucinated cues along the way.
package subtitle

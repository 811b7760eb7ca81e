// Package language normalizes language codes for subtitle track metadata.
package language

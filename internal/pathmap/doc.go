// Package pathmap rewrites externally supplied media paths into locally
// accessible ones using an ordered rule list. The first rule that applies
// wins; unmatched paths pass through unchanged.
package pathmap

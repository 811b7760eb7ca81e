package subtitle

// Segment is a single span of recognized speech. Segments arrive from the
// recognition engine ordered by start time, with End >= Start.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

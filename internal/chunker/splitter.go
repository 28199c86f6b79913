// Package chunker splits document text into overlapping bounded-length
// chunks suitable for embedding and retrieval.
package chunker

// DefaultMaxChars is the default chunk length in runes.
const DefaultMaxChars = 500

// DefaultOverlap is the default number of runes shared between
// consecutive chunks.
const DefaultOverlap = 50

// separators are tried in order of preference when looking for a natural
// place to end a chunk: paragraph break, line break, sentence end, word gap.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts text into chunks of at most maxLen runes where consecutive
// chunks share exactly overlap runes. Chunk i+1 always starts overlap runes
// before the end of chunk i, so stripping the overlapped prefix of every
// chunk after the first reassembles the original text.
type Splitter struct {
	maxLen  int
	overlap int
}

// NewSplitter creates a splitter, clamping invalid arguments to sane values.
func NewSplitter(maxLen, overlap int) *Splitter {
	if maxLen <= 0 {
		maxLen = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxLen {
		overlap = maxLen / 4
	}
	return &Splitter{maxLen: maxLen, overlap: overlap}
}

// MaxLen returns the configured maximum chunk length in runes.
func (s *Splitter) MaxLen() int { return s.maxLen }

// Overlap returns the configured overlap in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into chunks. Empty input yields no chunks.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	var chunks []string
	start := 0
	for {
		end := start + s.maxLen
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		// The cut must stay past start+overlap so the next window makes
		// forward progress.
		cut := snap(runes, start+s.overlap+1, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - s.overlap
	}
}

// snap moves the cut point backward from hi to the nearest natural boundary
// not before lo. The separator stays with the chunk being closed. Falls back
// to a hard cut at hi when no boundary fits.
func snap(runes []rune, lo, hi int) int {
	for _, sep := range separators {
		sr := []rune(sep)
		for cut := hi; cut >= lo; cut-- {
			if endsWith(runes, cut, sr) {
				return cut
			}
		}
	}
	return hi
}

// endsWith reports whether the separator sr ends at index cut.
func endsWith(runes []rune, cut int, sr []rune) bool {
	if cut-len(sr) < 0 {
		return false
	}
	for i, r := range sr {
		if runes[cut-len(sr)+i] != r {
			return false
		}
	}
	return true
}

// Package textsplit chunks uploaded documents for embedding. Splitting is
// recursive over separators of decreasing coarseness so chunks break on
// paragraph and sentence boundaries before resorting to hard cuts.
package textsplit

import "strings"

// DefaultChunkSize matches the chunk size the knowledge base was indexed
// with; changing it invalidates existing chunk embeddings.
const DefaultChunkSize = 1000

var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text into chunks of at most ChunkSize characters.
type Splitter struct {
	ChunkSize int
}

// New returns a splitter with the default chunk size.
func New() *Splitter {
	return &Splitter{ChunkSize: DefaultChunkSize}
}

// Split breaks content into chunks. Whitespace-only chunks are dropped.
func (s *Splitter) Split(content string) []string {
	size := s.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	raw := split(content, size, separators)

	chunks := make([]string, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

func split(content string, size int, seps []string) []string {
	if len(content) <= size {
		if content == "" {
			return nil
		}
		return []string{content}
	}

	sep := seps[0]
	rest := seps
	if len(rest) > 1 {
		rest = rest[1:]
	}

	var pieces []string
	if sep == "" {
		for len(content) > size {
			pieces = append(pieces, content[:size])
			content = content[size:]
		}
		if content != "" {
			pieces = append(pieces, content)
		}
		return pieces
	}

	var out []string
	var current strings.Builder
	for _, piece := range strings.SplitAfter(content, sep) {
		if len(piece) > size {
			if current.Len() > 0 {
				out = append(out, current.String())
				current.Reset()
			}
			out = append(out, split(piece, size, rest)...)
			continue
		}
		if current.Len()+len(piece) > size {
			out = append(out, current.String())
			current.Reset()
		}
		current.WriteString(piece)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

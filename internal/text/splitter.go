// Package text provides sentence segmentation for synthesis requests.
//
// The generation model is invoked per sentence to keep per-call context
// length, latency, and memory predictable; splitting on sentence boundaries
// rather than fixed character windows avoids mid-sentence cuts that degrade
// prosody.
package text

import (
	"regexp"
	"strings"
)

// boundaryRegexPattern matches a run of sentence-ending punctuation
// followed by the whitespace that separates it from the next sentence.
// The first group marks where the sentence ends; the whitespace itself is
// collapsed and retained by neither side of the split.
const boundaryRegexPattern = `([.!?]+)\s+`

// Splitter segments free-form input text into synthesis units.
type Splitter struct {
	boundaryPattern *regexp.Regexp
}

// NewSplitter creates a splitter with its boundary pattern precompiled.
func NewSplitter() *Splitter {
	return &Splitter{
		boundaryPattern: regexp.MustCompile(boundaryRegexPattern),
	}
}

// Split returns the trimmed, non-empty sentences of the input in order.
// Input without terminal punctuation yields the trimmed whole string as a
// single sentence; whitespace-only input yields no sentences.
func (s *Splitter) Split(input string) []string {
	matches := s.boundaryPattern.FindAllStringSubmatchIndex(input, -1)

	sentences := make([]string, 0, len(matches)+1)
	start := 0

	for _, match := range matches {
		// match[3] is the end of the punctuation group, so the
		// trailing whitespace stays out of the sentence.
		piece := strings.TrimSpace(input[start:match[3]])
		if piece != "" {
			sentences = append(sentences, piece)
		}

		start = match[1]
	}

	tail := strings.TrimSpace(input[start:])
	if tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

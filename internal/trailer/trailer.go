// Package trailer encodes the summary block appended after a streamed
// tutor reply and separates it from the displayable text.
package trailer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// Open starts a trailer. It is always preceded by a blank line.
	Open  = "[[PROCESSED_RESPONSE:"
	Close = "]]"

	separator = "\n\n"
)

// ProcessedResponse is the secondary summary of a tutor reply.
type ProcessedResponse struct {
	Summary      string `json:"summary"`
	RandomNumber int    `json:"randomNumber"`
}

// Format renders pr as a trailer ready to append to a reply.
func Format(pr ProcessedResponse) (string, error) {
	b, err := json.Marshal(pr)
	if err != nil {
		return "", fmt.Errorf("marshal processed response: %w", err)
	}
	return separator + Open + string(b) + Close, nil
}

// Split separates a finished reply into its displayable part and a
// parsed trailer. Only text from the first "\n\n[[PROCESSED_RESPONSE:"
// onwards is treated as a trailer; a reply without one is returned
// unchanged. The returned response is nil when the trailer is absent or
// malformed.
func Split(text string) (string, *ProcessedResponse) {
	idx := strings.Index(text, separator+Open)
	if idx < 0 {
		return text, nil
	}
	return text[:idx], decode(text[idx+len(separator+Open):])
}

// SplitPartial is Split for a reply that is still arriving: a trailing
// prefix of the marker, such as "\n\n[[PROC", is held back from the
// display text since it may turn into a trailer with the next chunk.
func SplitPartial(text string) (string, *ProcessedResponse) {
	if strings.Contains(text, separator+Open) {
		return Split(text)
	}
	return stripPartialOpen(text), nil
}

// decode reads the JSON object at the start of body and requires that
// only Close follows it. A marker quoted inside the summary stays part of
// the JSON string.
func decode(body string) *ProcessedResponse {
	dec := json.NewDecoder(strings.NewReader(body))
	var pr ProcessedResponse
	if err := dec.Decode(&pr); err != nil {
		return nil
	}
	if body[dec.InputOffset():] != Close {
		return nil
	}
	return &pr
}

// stripPartialOpen removes a trailing prefix of the trailer marker.
func stripPartialOpen(text string) string {
	marker := separator + Open
	for n := min(len(marker)-1, len(text)); n > 0; n-- {
		if strings.HasSuffix(text, marker[:n]) {
			return text[:len(text)-n]
		}
	}
	return text
}

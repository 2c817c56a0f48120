package invoice

import (
	"strconv"
	"strings"
)

// StubNumberPart extracts the numeric tail of a stub label for ordering.
// Labels are either a bare number ("1050") or a range ("101-1050"); the part
// after the last dash wins. Anything unparsable is 0 so unknown labels sink
// to the bottom of a descending sort.
func StubNumberPart(label string) int64 {
	if label == "" {
		return 0
	}
	if idx := strings.LastIndex(label, "-"); idx >= 0 {
		label = label[idx+1:]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(label), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

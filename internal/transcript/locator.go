package transcript

import (
	"fmt"
	"regexp"

	"ytlearn/internal/domain"
)

var (
	videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)
	bareIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// ParseVideoID derives the 11-character video identifier from a watch URL,
// short URL, embed URL, or a bare identifier.
func ParseVideoID(ref string) (string, error) {
	if bareIDPattern.MatchString(ref) {
		return ref, nil
	}
	m := videoIDPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", fmt.Errorf("%w: no video id in %q", domain.ErrInvalidReference, ref)
	}
	return m[1], nil
}

package veranstalter

import (
	"fmt"
	"regexp"
	"strconv"
)

var versionPattern = regexp.MustCompile(`^"\d+"$`)

// ParseVersion extracts the number from a quoted version token such as "3".
// Tokens that are not a quoted decimal integer yield ErrVersionInvalid.
func ParseVersion(token string) (int, error) {
	if !versionPattern.MatchString(token) {
		return 0, fmt.Errorf("%w: %s", ErrVersionInvalid, token)
	}

	v, err := strconv.Atoi(token[1 : len(token)-1])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrVersionInvalid, token)
	}
	return v, nil
}

// FormatVersion renders v as a quoted token for ETag and If-Match.
func FormatVersion(v int) string {
	return `"` + strconv.Itoa(v) + `"`
}

// checkVersion rejects a supplied version older than the stored one.
// Equal versions and newer ones are accepted.
func checkVersion(supplied, stored int) error {
	if supplied < stored {
		return fmt.Errorf("%w: %d < %d", ErrVersionOutdated, supplied, stored)
	}
	return nil
}

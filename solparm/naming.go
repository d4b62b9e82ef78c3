package solparm

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
)

// validName restricts solution-set and solution-table names.
var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// nameSlots is the size of the auto-naming suffix space. Names follow the
// pattern prefix + three decimal digits, so at most 1000 tables (or history
// entries) per prefix can exist.
const nameSlots = 1000

var suffixed = regexp.MustCompile(`^(.*)([0-9]{3})$`)

// firstAvailName returns prefix + the smallest unused three-digit suffix
// among the existing names, or ErrNameExhausted when all 1000 are taken.
func firstAvailName(existing []string, prefix string) (string, error) {
	taken := make(map[int]bool)
	for _, name := range existing {
		m := suffixed.FindStringSubmatch(name)
		if m == nil || m[1] != prefix {
			continue
		}
		var n int
		fmt.Sscanf(m[2], "%d", &n)
		taken[n] = true
	}
	for i := 0; i < nameSlots; i++ {
		if !taken[i] {
			return fmt.Sprintf("%s%03d", prefix, i), nil
		}
	}
	return "", errors.Wrapf(ErrNameExhausted, "prefix %q", prefix)
}

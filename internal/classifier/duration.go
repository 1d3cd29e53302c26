package classifier

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"ytstat/internal/models"
)

// MaxDurationSeconds bounds a parsed duration; longer input is rejected.
const MaxDurationSeconds = math.MaxInt32

var durationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO-8601 duration such as "PT1H2M3S" into seconds.
// Every component is optional. Input that does not match or exceeds
// MaxDurationSeconds yields 0 and an error wrapping models.ErrClassificationInput.
func ParseDuration(raw string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || s == "P" || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("%w: duration %q", models.ErrClassificationInput, raw)
	}
	m := durationRE.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: duration %q", models.ErrClassificationInput, raw)
	}

	multipliers := []int{86400, 3600, 60, 1}
	total := 0
	for i, mult := range multipliers {
		part := m[i+1]
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: duration %q", models.ErrClassificationInput, raw)
		}
		if n > (MaxDurationSeconds-total)/mult {
			return 0, fmt.Errorf("%w: duration %q out of range", models.ErrClassificationInput, raw)
		}
		total += n * mult
	}
	return total, nil
}

package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

// OperationDuration computes the elapsed time between two "HH:MM:SS"
// wall-clock strings and formats it as "Xm Ys". Both times are taken as
// seconds since midnight of the same day; a mission spanning midnight is not
// handled.
func OperationDuration(start, end string) (string, error) {
	startSec, err := parseClock(start)
	if err != nil {
		return "", err
	}
	endSec, err := parseClock(end)
	if err != nil {
		return "", err
	}
	diff := endSec - startSec
	if diff < 0 {
		return "", fmt.Errorf("end time %q precedes start time %q", end, start)
	}
	return fmt.Sprintf("%dm %ds", diff/60, diff%60), nil
}

// parseClock converts "HH:MM:SS" (seconds optional) to seconds since midnight
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("malformed clock time %q: %v", s, err)
		}
		switch i {
		case 0:
			total += n * 3600
		case 1:
			total += n * 60
		case 2:
			total += n
		}
	}
	return total, nil
}

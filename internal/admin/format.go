package admin

import (
	"fmt"
	"math"
	"strconv"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count in binary units with at most two
// decimals, e.g. "1.5 KB".
func FormatBytes(bytes float64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(bytes) / math.Log(1024)))
	i = min(max(i, 0), len(byteUnits)-1)

	v := math.Round(bytes/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatUptime renders seconds as "<d>d <h>h <m>m".
func FormatUptime(seconds float64) string {
	s := int64(seconds)
	days := s / 86400
	hours := s % 86400 / 3600
	mins := s % 3600 / 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
}

// MemoryUsagePercent returns used/max as a rounded percentage, or 0 when max
// is unknown.
func MemoryUsagePercent(used, maxBytes float64) int {
	if maxBytes <= 0 {
		return 0
	}
	return int(math.Round(used / maxBytes * 100))
}

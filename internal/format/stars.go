package format

import (
	"fmt"
	"strconv"
	"strings"
)

// StarCount formats a stargazer count for display, e.g. 950 -> "950",
// 1200 -> "1.2k", 120000 -> "120k".
func StarCount(n int) string {
	if n < 1000 {
		return strconv.Itoa(n)
	}
	s := fmt.Sprintf("%.1f", float64(n)/1000)
	s = strings.TrimSuffix(s, ".0")
	return s + "k"
}

package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

// zhMagnitudes mirrors the zh-CN "from now" thresholds used by the dashboard.
var zhMagnitudes = []humanize.RelTimeMagnitude{
	{D: 45 * time.Second, Format: "几秒%s", DivBy: time.Second},
	{D: 90 * time.Second, Format: "1 分钟%s", DivBy: 1},
	{D: 45 * time.Minute, Format: "%d 分钟%s", DivBy: time.Minute},
	{D: 90 * time.Minute, Format: "1 小时%s", DivBy: 1},
	{D: 22 * time.Hour, Format: "%d 小时%s", DivBy: time.Hour},
	{D: 36 * time.Hour, Format: "1 天%s", DivBy: 1},
	{D: 26 * day, Format: "%d 天%s", DivBy: day},
	{D: 45 * day, Format: "1 个月%s", DivBy: 1},
	{D: 320 * day, Format: "%d 个月%s", DivBy: month},
	{D: 548 * day, Format: "1 年%s", DivBy: 1},
	{D: math.MaxInt64, Format: "%d 年%s", DivBy: year},
}

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
}

// Seconds renders a duration in seconds as hours, minutes and seconds,
// e.g. "1小时2分" or "45秒". Seconds are dropped once hours are shown.
func Seconds(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	remaining := seconds % 60

	var b strings.Builder
	if hours > 0 {
		b.WriteString(strconv.Itoa(hours) + "小时")
	}
	if minutes > 0 {
		b.WriteString(strconv.Itoa(minutes) + "分")
	}
	if (remaining > 0 || b.Len() == 0) && hours <= 0 {
		b.WriteString(strconv.Itoa(remaining) + "秒")
	}
	return b.String()
}

// Season formats a season number as "Sxx". Empty input stays empty.
func Season(value string) string {
	if value == "" {
		return ""
	}
	if n := utf8.RuneCountInString(value); n < 2 {
		value = strings.Repeat("0", 2-n) + value
	}
	return "S" + value
}

// PrefixWithPlus adds a "+" to positive numbers.
func PrefixWithPlus(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Initials returns the upper-cased first letter of each space separated word.
func Initials(name string) string {
	if name == "" {
		return ""
	}

	var b strings.Builder
	for _, word := range strings.Split(name, " ") {
		r, size := utf8.DecodeRuneInString(word)
		if size == 0 {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ParseDate parses a "YYYY-MM-DD" date in local time.
func ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-1-2", value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseTimestamp parses the timestamp formats the dashboard API returns.
// Values without a zone are read as local time.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", value)
}

// TimeDifference returns the elapsed time between from and now in the largest
// whole unit: "N秒", "N分钟", "N小时" or "N天".
func TimeDifference(from, now time.Time) string {
	if from.IsZero() {
		return ""
	}

	seconds := int64(math.Floor(now.Sub(from).Seconds()))
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d秒", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d分钟", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d小时", seconds/3600)
	default:
		return fmt.Sprintf("%d天", seconds/86400)
	}
}

// RelativeTime describes t relative to now, e.g. "3 天前" or "2 小时后".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.CustomRelTime(t, now, "前", "后", zhMagnitudes)
}

// Date renders t as a short US-style date, e.g. "Jan 5, 2024".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// MonthShort renders t as "Jan 5", or as a clock time like "3:04 PM" when
// timeForToday is set and t falls on the same calendar day as now.
func MonthShort(t, now time.Time, timeForToday bool) string {
	if t.IsZero() {
		return ""
	}
	if timeForToday {
		ty, tm, td := t.Date()
		ny, nm, nd := now.In(t.Location()).Date()
		if ty == ny && tm == nm && td == nd {
			return t.Format("3:04 PM")
		}
	}
	return t.Format("Jan 2")
}

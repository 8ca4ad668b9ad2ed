package telegram

import "time"

// Customer-facing timestamps are rendered in Myanmar time. A fixed zone
// avoids depending on the host tzdata.
var myanmarTZ = time.FixedZone("MMT", 6*3600+1800)

// FormatTime renders a timestamp the way staff captions show it.
func FormatTime(t time.Time) string {
	return t.In(myanmarTZ).Format("15:04:05 02/01/06")
}

// FormatDate renders just the date, used for license expiry lines.
func FormatDate(t time.Time) string {
	return t.In(myanmarTZ).Format("02/01/2006")
}

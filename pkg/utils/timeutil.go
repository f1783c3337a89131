package utils

import "time"

// IST is the Indian Standard Time location (UTC+5:30). Articles are stamped
// with the processing date in this zone.
var IST = loadIST()

func loadIST() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	// no tzdata on the host
	return time.FixedZone("IST", 5*60*60+30*60)
}

// DateLayout is the calendar date layout stamped on articles.
const DateLayout = "2006-01-02"

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// FormatDateIST formats a time.Time to "2006-01-02" in IST.
func FormatDateIST(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// FormatDateTimeIST formats a time.Time to "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05 IST")
}

package domain

// ReportSource identifies the channel a report arrived through.
type ReportSource string

const (
	ReportSourceVoice ReportSource = "voice"
	ReportSourceSMS   ReportSource = "sms"
)

// Report is the ephemeral input consumed by the intake flow. It is
// never persisted directly; the intake coordinator turns it into a new
// ticket or a merge against an existing one.
type Report struct {
	Text     string
	Reporter string // email address or phone number, may be empty
	Name     string
	Location *Location
	Photo    string
	Source   ReportSource
}

package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// MailKind selects which mail body to render.
type MailKind string

const (
	MailScheduled MailKind = "scheduled"
	MailUpdated   MailKind = "updated"
	MailReminder  MailKind = "reminder"
)

// MeetingMail carries the meeting fields rendered into mail bodies.
type MeetingMail struct {
	Title     string
	Date      time.Time
	StartTime string
	EndTime   string
	Location  string
	Notes     string
}

const mailBody = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<p>{{ .Lead }}</p>
<table cellpadding="6" style="border-collapse: collapse;">
<tr><td><b>Meeting</b></td><td>{{ .Meeting.Title }}</td></tr>
<tr><td><b>Date</b></td><td>{{ .Meeting.Date.Format "Monday, 02 January 2006" }}</td></tr>
{{ if .Meeting.StartTime }}<tr><td><b>Time</b></td><td>{{ .Meeting.StartTime }}{{ if .Meeting.EndTime }} - {{ .Meeting.EndTime }}{{ end }}</td></tr>{{ end }}
{{ if .Meeting.Location }}<tr><td><b>Location</b></td><td>{{ .Meeting.Location }}</td></tr>{{ end }}
{{ if .Meeting.Notes }}<tr><td><b>Notes</b></td><td>{{ .Meeting.Notes }}</td></tr>{{ end }}
</table>
<p style="color: #777; font-size: 12px;">This message was sent automatically by the meeting calendar.</p>
</body>
</html>`

var mailTemplate = template.Must(template.New("mail").Parse(mailBody))

// Render produces the subject and HTML body for a meeting mail of the given
// kind.
func Render(kind MailKind, meeting MeetingMail) (subject, htmlBody string, err error) {
	var lead string
	switch kind {
	case MailScheduled:
		subject = fmt.Sprintf("Meeting scheduled: %s", meeting.Title)
		lead = "You have been invited to the following meeting."
	case MailUpdated:
		subject = fmt.Sprintf("Meeting updated: %s", meeting.Title)
		lead = "A meeting you are invited to has changed."
	case MailReminder:
		subject = fmt.Sprintf("Reminder: %s", meeting.Title)
		lead = "This is a reminder for the following meeting."
	default:
		return "", "", fmt.Errorf("unknown mail kind %q", kind)
	}

	var buf strings.Builder
	data := struct {
		Lead    string
		Meeting MeetingMail
	}{Lead: lead, Meeting: meeting}

	if err := mailTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render mail body: %w", err)
	}
	return subject, buf.String(), nil
}

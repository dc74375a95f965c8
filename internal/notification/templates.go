package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectLeadAssigned        = "New lead assigned to you"
	subjectSessionScheduledFmt = "Counseling session booked with %s"
)

// emailTmpl is the shared layout for counselor notification emails.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Heading}}</h2>
  <p>Hi {{.Recipient}},</p>
  <p>{{.Body}}</p>
  {{if .Detail}}<p><strong>{{.Detail}}</strong></p>{{end}}
  <p>Please follow up from your portal dashboard.</p>
</body>
</html>`))

type emailData struct {
	Heading   string
	Recipient string
	Body      string
	Detail    string
}

func renderEmail(data emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}

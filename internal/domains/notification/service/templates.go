package service

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"library-lending-backend/internal/domains/notification/model"
)

var overdueReminderTmpl = template.Must(template.New("overdue_reminder").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Dear {{.ReaderName}},</p>
  <p>Our records show the following {{if eq (len .Items) 1}}book is{{else}}books are{{end}} past due at {{.Library}}:</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Title</th><th align="left">Author</th><th align="left">Due date</th></tr>
    {{range .Items}}<tr><td>{{.Title}}</td><td>{{.Author}}</td><td>{{date .DueDate}}</td></tr>
    {{end}}
  </table>
  <p>Please return {{if eq (len .Items) 1}}it{{else}}them{{end}} as soon as possible. Late fees accrue for each day past the due date.</p>
  <p>Thank you,<br>{{.Library}}</p>
</body>
</html>`))

func renderOverdueReminder(data model.ReminderData) (string, error) {
	var buf bytes.Buffer
	if err := overdueReminderTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render overdue reminder: %w", err)
	}
	return buf.String(), nil
}

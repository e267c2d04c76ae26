package handler

import (
	"html/template"
	"net/http"

	"github.com/fawziabuhussin/task-manager-api/internal/application/mailbox"
	"github.com/fawziabuhussin/task-manager-api/internal/transport/http/middleware"
	"github.com/sirupsen/logrus"
)

var mailboxPage = template.Must(template.New("mailbox").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Dev Mailbox</title></head>
<body>
<h1>Dev Mailbox</h1>
{{- if not . }}
<p>No messages yet.</p>
{{- end }}
{{- range . }}
<div style="border:1px solid #ccc;margin:8px;padding:8px">
<div><b>To:</b> {{ .To }}</div>
<div><b>Subject:</b> {{ .Subject }}</div>
<div><b>At:</b> {{ .CreatedAt.Format "2006-01-02T15:04:05Z07:00" }}</div>
<pre>{{ .Body }}</pre>
</div>
{{- end }}
</body>
</html>
`))

// DevHandler serves development-only helpers. Routes are mounted only when
// APP_ENV=development.
type DevHandler struct {
	mailbox mailbox.Service
	log     logrus.FieldLogger
}

func NewDevHandler(mb mailbox.Service, log logrus.FieldLogger) *DevHandler {
	return &DevHandler{mailbox: mb, log: log}
}

// Mailbox renders the most recent captured emails.
func (h *DevHandler) Mailbox(w http.ResponseWriter, r *http.Request) {
	emails, err := h.mailbox.Recent(r.Context(), mailbox.DefaultLimit)
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := mailboxPage.Execute(w, emails); err != nil {
		h.log.WithError(err).Error("render mailbox")
	}
}

// IP echoes the client address as seen by the server.
func (h *DevHandler) IP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"ip": middleware.ClientIP(r)})
}

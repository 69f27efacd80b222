package notify

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"
)

// AlertType classifies an alert.
type AlertType string

const (
	Warning  AlertType = "warning"
	Error    AlertType = "error"
	Sending  AlertType = "sending"
	Success  AlertType = "success"
	Question AlertType = "question"
)

// Icon returns the emoji shown next to the alert type.
func (t AlertType) Icon() string {
	switch t {
	case Error:
		return "❌"
	case Sending:
		return "🔥"
	case Success:
		return "✅"
	case Question:
		return "❓"
	default:
		return "⚠"
	}
}

const (
	maxTitleLen   = 1000
	maxMessageLen = 1000
	maxStackLen   = 350
	timeLayout    = "2006-01-02T15:04:05.000"
)

// Alert is a structured failure or status description.
type Alert struct {
	Type  AlertType
	Title string
	Err   error
	Route string
}

// Formatter renders alerts as HTML snippets accepted by Telegram and Matrix.
// The zero value is usable: the app name is empty, the env is "unknown" and
// times are printed in the local zone.
type Formatter struct {
	AppName  string
	Env      string
	Location *time.Location
	Now      func() time.Time
}

// FormatAlert renders a as newline separated HTML lines.
func (f *Formatter) FormatAlert(a Alert) string {
	typ := a.Type
	if typ == "" {
		typ = Warning
	}

	title := truncateRunes(a.Title, maxTitleLen)
	if title == "" {
		title = "No title"
	}
	route := a.Route
	if route == "" {
		route = "N/A"
	}

	lines := []string{
		"<b>App:</b> " + html.EscapeString(f.AppName),
		"<b>Env:</b> " + html.EscapeString(f.env()),
		"<b>Error type:</b> " + typ.Icon() + " " + html.EscapeString(string(typ)),
		"<b>Error title:</b> " + html.EscapeString(title),
		"<b>Error route:</b> " + html.EscapeString(route),
		"<b>Error time:</b> " + f.timestamp(),
	}

	if a.Err != nil {
		msg := a.Err.Error()
		lines = append(lines, "<b>Error message:</b> "+html.EscapeString(truncateRunes(msg, maxMessageLen)))

		if detail := fmt.Sprintf("%+v", a.Err); detail != msg {
			quoted, _ := json.Marshal(detail)
			lines = append(lines, "<b>Error stack:</b>\n<code>"+html.EscapeString(truncateRunes(string(quoted), maxStackLen))+"</code>")
		}
	}

	return strings.Join(lines, "\n")
}

// FormatSuccess renders a log-style success message mentioning the client IP.
func (f *Formatter) FormatSuccess(title, ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{
		"<b>App:</b> " + html.EscapeString(f.AppName),
		"<b>Env:</b> " + html.EscapeString(f.env()),
		"<b>Msg type:</b> " + Success.Icon() + " log",
		"<b>Msg title:</b> " + html.EscapeString(title) + ". User IP: " + html.EscapeString(ip),
		"<b>Msg time:</b> " + f.timestamp(),
	}, "\n")
}

func (f *Formatter) env() string {
	if f.Env == "" {
		return "unknown"
	}
	return f.Env
}

func (f *Formatter) timestamp() string {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc).Format(timeLayout)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

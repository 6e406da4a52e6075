package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"

	"vocamail/internal/vocab"
)

// Subject returns the message subject for the given day.
func Subject(day time.Time) string {
	return fmt.Sprintf("Mailed words for %s", day.Format("2006-01-02"))
}

// BuildContent renders the plain text and HTML bodies for records.
func BuildContent(records []vocab.MailedRecord) (string, string) {
	lines := make([]string, 0, len(records))
	var b strings.Builder
	b.WriteString("<html><body>\n<h2>Today's Mailed Words</h2>\n<ul>\n")

	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- %s | %s | %s | %s", r.Word, r.Meaning, r.Phrase, r.Media))
		fmt.Fprintf(&b, "<li><strong>%s</strong> &mdash; %s<br/><em>%s</em><br/><em>%s</em></li>\n",
			html.EscapeString(r.Word),
			html.EscapeString(r.Meaning),
			html.EscapeString(r.Phrase),
			html.EscapeString(r.Media),
		)
	}

	b.WriteString("</ul>\n</body></html>")
	return strings.Join(lines, "\n"), b.String()
}

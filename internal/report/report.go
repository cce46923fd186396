// Package report renders a contact book for humans and other tools.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/contactbook/internal/book"
	"github.com/hpungsan/contactbook/internal/contact"
	"github.com/hpungsan/contactbook/internal/errors"
	"github.com/hpungsan/contactbook/internal/store"
)

// Format is an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

// extensions lists accepted file extensions per format; the first is the default.
var extensions = map[Format][]string{
	FormatMarkdown: {".md", ".markdown"},
	FormatHTML:     {".html", ".htm"},
	FormatYAML:     {".yaml", ".yml"},
	FormatJSON:     {".json"},
}

// ParseFormat accepts a format name or a common alias ("md", "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown export format %q (want markdown, html, yaml or json)", s))
	}
}

// Ext returns the default file extension for f.
func (f Format) Ext() string {
	if exts, ok := extensions[f]; ok {
		return exts[0]
	}
	return ""
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

func escape(s string) string { return mdEscaper.Replace(s) }

// Markdown renders every contact as a section, in book order.
func Markdown(b *book.Book) string {
	var sb strings.Builder
	sb.WriteString("# Contacts\n\n")

	records := b.Records()
	if len(records) == 0 {
		sb.WriteString("_No contacts._\n")
		return sb.String()
	}

	for i, r := range records {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeRecord(&sb, r)
	}
	return sb.String()
}

func writeRecord(sb *strings.Builder, r *contact.Record) {
	fmt.Fprintf(sb, "## %s\n\n", escape(r.Name().String()))

	phones := make([]string, 0, len(r.Phones()))
	for _, p := range r.Phones() {
		phones = append(phones, p.String())
	}
	fmt.Fprintf(sb, "- **Phones:** %s\n", orNotSet(strings.Join(phones, ", ")))
	fmt.Fprintf(sb, "- **Birthday:** %s\n", r.ShowBirthday())

	email := ""
	if e, ok := r.Email(); ok {
		email = escape(e.String())
	}
	fmt.Fprintf(sb, "- **Email:** %s\n", orNotSet(email))

	addresses := r.Addresses()
	for i, a := range addresses {
		addresses[i] = escape(a)
	}
	fmt.Fprintf(sb, "- **Address:** %s\n", orNotSet(strings.Join(addresses, "; ")))

	notes := r.Notes()
	if len(notes) == 0 {
		return
	}
	sb.WriteString("\n### Notes\n\n")
	for i, n := range notes {
		fmt.Fprintf(sb, "%d. %s", i+1, escape(n.Text()))
		for _, tag := range n.HashtagStrings() {
			fmt.Fprintf(sb, " `%s`", tag)
		}
		sb.WriteString("\n")
	}
}

func orNotSet(s string) string {
	if s == "" {
		return contact.NotSet
	}
	return s
}

// Birthdays renders scheduler output as a Markdown section.
func Birthdays(buckets []book.BirthdayBucket) string {
	var sb strings.Builder
	sb.WriteString("## Upcoming birthdays\n\n")
	if len(buckets) == 0 {
		fmt.Fprintf(&sb, "_No birthdays in the next %d days._\n", book.BirthdayWindowDays)
		return sb.String()
	}
	for i, bucket := range buckets {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "### %s\n\n", bucket.Day)
		for _, e := range bucket.Entries {
			fmt.Fprintf(&sb, "- %s (%s)\n", escape(e.Label()), e.Date.Format(contact.BirthdayLayout))
		}
	}
	return sb.String()
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Contacts</title>
</head>
<body>
%s</body>
</html>
`

// HTML converts the Markdown rendering into a standalone page. Raw HTML in
// contact text is not passed through.
func HTML(b *book.Book) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(b)), &buf); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to render html: %w", err))
	}
	return fmt.Sprintf(htmlPage, buf.String()), nil
}

// YAML renders the same documents the JSON codec persists.
func YAML(b *book.Book) ([]byte, error) {
	data, err := yaml.Marshal(store.Documents(b))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to render yaml: %w", err))
	}
	return data, nil
}

// Render writes b to w in format f.
func Render(w io.Writer, f Format, b *book.Book) error {
	switch f {
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(b))
		return err
	case FormatHTML:
		page, err := HTML(b)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	case FormatYAML:
		data, err := YAML(b)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		return store.Encode(w, b)
	default:
		return errors.NewInvalidRequest(fmt.Sprintf("unknown export format %q", f))
	}
}

// Write validates path for f and writes the export atomically.
func Write(f Format, path string, b *book.Book) error {
	if err := ValidatePath(path, f); err != nil {
		return err
	}
	return store.WriteAtomic(path, func(w io.Writer) error {
		return Render(w, f, b)
	})
}

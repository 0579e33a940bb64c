// Package view holds the embedded page and fragment templates.
package view

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html templates/*.xml
var files embed.FS

var titleCaser = cases.Title(language.English)

// Title title-cases a name as printed on labels ("JOHN DOE" -> "John Doe").
func Title(s string) string { return titleCaser.String(strings.ToLower(s)) }

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"datetime": func(t interface{}) string {
		switch v := t.(type) {
		case time.Time:
			return v.Format("2006-01-02 15:04:05")
		case *time.Time:
			if v != nil {
				return v.Format("2006-01-02 15:04:05")
			}
		}
		return "never"
	},
	"id8":   func(id int64) string { return fmt.Sprintf("%08d", id) },
	"title": Title,
}

// xmlText escapes character data; html/template would also escape the prolog.
func xmlText(v interface{}) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(fmt.Sprint(v))); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Renderer renders pages through gin and fragments to strings.
type Renderer struct {
	t   *template.Template
	doc *texttemplate.Template
}

func New() (*Renderer, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	doc, err := texttemplate.New("").
		Funcs(texttemplate.FuncMap(funcs)).
		Funcs(texttemplate.FuncMap{"xml": xmlText}).
		ParseFS(files, "templates/*.xml")
	if err != nil {
		return nil, fmt.Errorf("parse xml templates: %w", err)
	}
	return &Renderer{t: t, doc: doc}, nil
}

// Templates is the set to hand to gin's SetHTMLTemplate.
func (r *Renderer) Templates() *template.Template { return r.t }

// Fragment executes a named template into a string.
func (r *Renderer) Fragment(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Document executes a named XML template. Values must go through the xml func.
func (r *Renderer) Document(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.doc.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

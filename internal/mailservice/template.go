package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*
var templateFS embed.FS

func NewTemplate() *Template {
	return &Template{}
}

// ParseTemplate renders the subject, plainBody and htmlBody blocks of the named template.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	t, err := template.New("email").ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not parse template: %w", err)
	}

	var out [3]*bytes.Buffer
	for i, block := range []string{"subject", "plainBody", "htmlBody"} {
		out[i] = new(bytes.Buffer)
		if err := t.ExecuteTemplate(out[i], block, data); err != nil {
			return nil, nil, nil, fmt.Errorf("could not render %s: %w", block, err)
		}
	}

	return out[0], out[1], out[2], nil
}

package menu

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"
)

// failMessage is the fixed line printed when a chosen boot target fails.
const failMessage = "Boot failed, dropping to the iPXE shell"

var tmpl = template.Must(template.New("iPXE").Parse(`#!ipxe

set base-url {{ .BaseURL }}
{{- if .Background }}
console --picture {{ .Background }} ||
{{- end }}

:start
menu {{ .Title }}
{{- range .Entries }}
item {{ .Name }} {{ .Description }}
{{- end }}
choose {{ if .Default }}--default {{ .Default }} {{ end }}{{ if .TimeoutMS }}--timeout {{ .TimeoutMS }} {{ end }}target && goto ${target} || goto shell

{{ range .Entries -}}
:{{ .Name }}
echo Booting {{ .Description }}
{{- if .Arch }}
set arch {{ .Arch }}
{{- end }}
kernel {{ .Kernel }}{{ if .Cmdline }} {{ .Cmdline }}{{ end }} || goto failed
{{- range .Initrds }}
initrd --name {{ .Name }} {{ .URL }} || goto failed
{{- end }}
imgfetch --name report {{ .ReportURL }} ||
imgfree report ||
boot || goto failed

{{ end -}}
:failed
echo {{ .FailMessage }}
:shell
echo Type "exit" to return to the boot menu
shell
goto start
`))

type scriptInitrd struct {
	Name string
	URL  string
}

type scriptEntry struct {
	Name        string
	Description string
	Arch        string
	Kernel      string
	Cmdline     string
	Initrds     []scriptInitrd
	ReportURL   string
}

type scriptParams struct {
	BaseURL     string
	Background  string
	Title       string
	Default     string
	TimeoutMS   int
	Entries     []scriptEntry
	FailMessage string
}

// Render generates the boot menu script served to iPXE clients. The base URL
// is emitted once and every file reference goes through the ${base-url}
// variable, which the firmware expands at fetch time.
func (m *Menu) Render(baseURL string) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate menu: %w", err)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is empty")
	}

	params := scriptParams{
		BaseURL:     baseURL,
		Background:  fileURL(m.Background),
		Title:       m.Title,
		Default:     m.Default,
		TimeoutMS:   m.TimeoutMS,
		FailMessage: failMessage,
	}
	if params.Title == "" {
		params.Title = DefaultTitle
	}

	for _, e := range m.Entries {
		se := scriptEntry{
			Name:        e.Name,
			Description: e.Description,
			Arch:        e.Arch,
			Kernel:      fileURL(e.Kernel),
			Cmdline:     e.Cmdline,
			ReportURL:   fmt.Sprintf("${base-url}/booted?target=%s&mac=${mac:hexhyp}", e.Name),
		}
		for _, initrd := range e.Initrds {
			se.Initrds = append(se.Initrds, scriptInitrd{
				Name: path.Base(initrd),
				URL:  fileURL(initrd),
			})
		}
		params.Entries = append(params.Entries, se)
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, params); err != nil {
		return nil, fmt.Errorf("failed to render boot script: %w", err)
	}
	return buff.Bytes(), nil
}

func fileURL(p string) string {
	if p == "" || IsAbsoluteURL(p) {
		return p
	}
	return "${base-url}/" + strings.TrimPrefix(p, "/")
}

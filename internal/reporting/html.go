package reporting

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
)

// htmlRenderer writes a single self-contained page: styles are inline and
// screenshots are embedded as data URIs.
type htmlRenderer struct{}

type htmlView struct {
	Title       string
	Tool        string
	Version     string
	GeneratedAt time.Time
	Runs        []htmlRun
}

type htmlRun struct {
	*schemas.Run
	Summary schemas.Summary
}

var htmlFuncs = template.FuncMap{
	"screenshot": func(png []byte) template.URL {
		return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	},
	"seconds": func(d time.Duration) string {
		return fmt.Sprintf("%.2fs", d.Seconds())
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format(time.RFC3339)
	},
}

var htmlTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2em; color: #222; }
h1 { margin-bottom: 0; }
.meta { color: #666; margin-top: .3em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0 2em; }
th, td { border: 1px solid #ddd; padding: .4em .6em; text-align: left; vertical-align: top; }
th { background: #f4f4f4; }
.pass { color: #1a7f37; font-weight: bold; }
.fail { color: #cf222e; font-weight: bold; }
.error { color: #9a6700; font-weight: bold; }
.message { white-space: pre-wrap; font-family: monospace; }
img { max-width: 480px; border: 1px solid #ccc; }
.summary span { margin-right: 1.5em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated by {{.Tool}} {{.Version}} at {{stamp .GeneratedAt}}</p>
{{range .Runs}}
<h2>Run {{.ID}}</h2>
<p class="meta">Target {{.Target}} &middot; started {{stamp .StartedAt}} &middot; took {{seconds .Duration}}</p>
<p class="summary">
<span>Total: {{.Summary.Total}}</span>
<span class="pass">Passed: {{.Summary.Passed}}</span>
<span class="fail">Failed: {{.Summary.Failed}}</span>
<span class="error">Errors: {{.Summary.Errors}}</span>
</p>
<table>
<thead><tr><th>Scenario</th><th>Status</th><th>Duration</th><th>Condition</th><th>Message</th></tr></thead>
<tbody>
{{range .Outcomes}}
<tr>
<td><strong>{{.Scenario}}</strong>{{with .Description}}<br><small>{{.}}</small>{{end}}</td>
<td class="{{.Status}}">{{.Status}}</td>
<td>{{seconds .Duration}}</td>
<td>{{.Condition}}</td>
<td><div class="message">{{.Message}}</div>{{with .Screenshot}}<img alt="screenshot" src="{{screenshot .}}">{{end}}</td>
</tr>
{{end}}
</tbody>
</table>
{{else}}
<p>No runs recorded.</p>
{{end}}
</body>
</html>
`))

func (htmlRenderer) render(w io.Writer, runs []*schemas.Run, m meta) error {
	view := htmlView{
		Title:       m.Title,
		Tool:        ToolName,
		Version:     m.Version,
		GeneratedAt: m.now(),
	}
	for _, run := range runs {
		view.Runs = append(view.Runs, htmlRun{Run: run, Summary: run.Summary()})
	}
	return htmlTemplate.Execute(w, view)
}

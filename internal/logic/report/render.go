package report

import (
	"bytes"
	"fmt"
	"text/template"
)

// reportTemplate renders the diagnostic report as Markdown. Sections with
// absent data degrade to explicit "no data" placeholders.
const reportTemplate = `# Restart diagnostic report

## Executive summary

{{- if .Rows}}

{{.ReadyCount}} of {{.TotalChecks}} monitored components reached READY within the {{.WindowSeconds}}s monitoring window.
{{- if .Findings}}
{{len .Findings}} finding(s) were produced; the highest severity is {{.TopSeverity}}.
{{- else}}
No root-cause findings were produced.
{{- end}}
{{- else}}

_No timeline data available._
{{- end}}

{{- if not .BaselineCapturedAt.IsZero}}

Baseline captured {{.BaselineCapturedAt.Format "2006-01-02 15:04:05 MST"}}; monitoring started {{.MonitoringStarted.Format "2006-01-02 15:04:05 MST"}}.
{{- end}}

## Time to ready

{{- if .Rows}}

| Component | Time to READY | Last status |
| --- | --- | --- |
{{- range .Rows}}
| {{if .DisplayName}}{{.DisplayName}}{{else}}{{.ID}}{{end}} | {{.TimeToReady}} | {{.LastStatus}} |
{{- end}}
{{- else}}

_No data._
{{- end}}

## Failure counts (final snapshot)

{{- if .Pods}}

| Failure mode | Pods |
| --- | --- |
| Crash-loop | {{.Counts.CrashLoop}} |
| Image pull | {{.Counts.ImagePull}} |
| Init failure | {{.Counts.InitFailure}} |
| Stuck pending | {{.Counts.Pending}} |
{{- else}}

_No data._
{{- end}}

## Findings

{{- if .Findings}}
{{range $i, $f := .Findings}}
### {{inc $i}}. [{{$f.Severity}}] {{$f.Message}}

- Rule: {{$f.Rule}}
{{- if $f.Component}}
- Component: {{$f.Component}}
{{- end}}
{{- if $f.Evidence}}
- Evidence: {{$f.Evidence}}
{{- end}}
- Recommendation: {{$f.Recommendation}}
{{end}}
{{- else}}

_No findings._
{{- end}}

## Detailed pod status

{{- if .Pods}}

| Pod | Phase | Ready | Restarts | Reason |
| --- | --- | --- | --- | --- |
{{- range .Pods}}
| {{.Name}} | {{.Phase}} | {{.Ready}} | {{.Restarts}} | {{.Reason}} |
{{- end}}
{{- else}}

_No data._
{{- end}}

{{- if .CaptureErrors}}

## Capture failures

{{- range .CaptureErrors}}
- {{.Category}}: {{.Error}}
{{- end}}
{{- end}}

## Raw artifacts

- Diagnostics root: {{.Artifacts.Root}}
{{- if .Artifacts.BaselineDir}}
- Baseline snapshot: {{.Artifacts.BaselineDir}}
{{- end}}
{{- if .Artifacts.MonitorDir}}
- Timeline and deep captures: {{.Artifacts.MonitorDir}}
{{- end}}
`

var tmpl = template.Must(
	template.New("report").
		Funcs(template.FuncMap{
			"inc": func(i int) int { return i + 1 },
		}).
		Parse(reportTemplate),
)

// Render produces the Markdown report document.
func Render(r *DiagnosticReport) ([]byte, error) {
	var buf bytes.Buffer

	if err := tmpl.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	return buf.Bytes(), nil
}

package gemini

import (
	"bytes"
	"fmt"
	"text/template"

	"memonotes/internal/generation"
)

// ── 提示词模板（加泰罗尼亚语，面向小学家长报告）──

var funcs = template.FuncMap{
	"orDefault": func(def, s string) string {
		if s == "" {
			return def
		}
		return s
	},
}

var subjectTmpl = template.Must(template.New("subject").Funcs(funcs).Parse(`
Ets un assistent expert per a un mestre de primària. Redacta un comentari d'informe (3-6 línies) en català formal i constructiu sobre l'alumne/a {{.StudentName}}.
NO posis introduccions ("Aquí tens...").
{{if .StyleExamples}}
Segueix l'estil d'aquests exemples:
{{.StyleExamples}}
{{end}}
Context:
- Assignatura: "{{.SubjectName}}"
- Nota: "{{.Grade}}"
- Continguts: "{{orDefault "No especificats" .WorkedContent}}"
- Notes del mestre: "{{.Notes}}"
`))

var personalTmpl = template.Must(template.New("personal").Funcs(funcs).Parse(`
Ets un assistent expert per a un mestre de primària. Redacta l'apartat "Aspectes Personals i Evolutius" de l'informe de {{.StudentName}}.

Estructura:
1. Progrés general i adaptació.
2. Rendiment acadèmic (síntesi).
3. Desenvolupament personal (autonomia, emocions).
4. Habilitats socials.
5. Tancament positiu.
{{if .StyleExamples}}
Segueix l'estil d'aquests exemples:
{{.StyleExamples}}
{{end}}
Dades:
- Notes personals: "{{.Notes}}"
- Assignatures:
{{range .Subjects}}  - {{.Name}}: [Nota: {{.Grade}}]. Notes: "{{.Notes}}"
{{end}}`))

var generalTmpl = template.Must(template.New("general").Funcs(funcs).Parse(`
Ets un assistent expert per a un mestre de primària. Redacta el "Comentari General" del trimestre per a {{.StudentName}} (3-6 línies) en català formal i constructiu.
NO posis introduccions ("Aquí tens...").
{{if .StyleExamples}}
Segueix l'estil d'aquests exemples:
{{.StyleExamples}}
{{end}}
Context:
- Aspectes personals: "{{orDefault "Sense comentaris." .PersonalAspects}}"
- Assignatures:
{{range .Subjects}}  - {{.Name}}: [Nota: {{.Grade}}]. Comentari: "{{orDefault .Notes .Report}}"
{{end}}- Notes del mestre: "{{.Notes}}"
`))

// BuildPrompt 按上下文类型渲染提示词
func BuildPrompt(fc generation.FieldContext) (string, error) {
	var tmpl *template.Template
	switch fc.(type) {
	case generation.SubjectContext:
		tmpl = subjectTmpl
	case generation.PersonalContext:
		tmpl = personalTmpl
	case generation.GeneralContext:
		tmpl = generalTmpl
	default:
		return "", fmt.Errorf("不支持的上下文类型 %T", fc)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, fc); err != nil {
		return "", fmt.Errorf("渲染提示词失败: %w", err)
	}
	return buf.String(), nil
}

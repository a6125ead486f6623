// Package errpage renders default fallback views for errors that reach
// the root boundary. It produces an HTML page for browsers and a JSON
// envelope for API clients; dev mode adds the underlying cause and the
// captured stack.
package errpage

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/bulwark-go/bulwark/pkg/apperr"
	"github.com/bulwark-go/bulwark/pkg/serialize"
)

var pageTmpl = template.Must(template.New("errpage").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Status}} {{.Name}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; padding: 4rem 2rem; color: #1a1a2e; }
main { max-width: 42rem; margin: 0 auto; }
h1 { font-size: 1.5rem; margin-bottom: 0.25rem; }
.status { color: #b91c1c; font-weight: 600; }
pre { background: #f4f4f5; padding: 1rem; overflow-x: auto; font-size: 0.8rem; border-radius: 4px; }
.cause { color: #52525b; }
</style>
</head>
<body>
<main>
<h1><span class="status">{{.Status}}</span> {{.Name}}</h1>
<p>{{.Message}}</p>
{{if .Cause}}<p class="cause">{{.Cause}}</p>{{end}}
{{if .Stack}}<pre>{{.Stack}}</pre>{{end}}
</main>
</body>
</html>
`))

type pageData struct {
	Status  int
	Name    string
	Message string
	Cause   string
	Stack   string
}

// WantsJSON reports whether the request should receive a JSON envelope
// instead of an HTML page.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	// Requests that sent JSON expect JSON back.
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// Render writes the default fallback view for err. Redirect kinds
// become HTTP redirects. dev controls whether cause and stack are
// included; stack may be nil.
func Render(w http.ResponseWriter, r *http.Request, err *apperr.Error, stack []byte, dev bool) {
	if err.Name == apperr.NameRedirect {
		if url, ok := err.Get(apperr.RedirectURLKey); ok {
			if target, ok := url.(string); ok && target != "" {
				http.Redirect(w, r, target, err.StatusCode)
				return
			}
		}
	}

	if WantsJSON(r) {
		RenderJSON(w, err)
		return
	}
	renderHTML(w, err, stack, dev)
}

// RenderJSON writes the serialized envelope for err. The envelope goes
// through the default registry, so the allow-list applies here too.
func RenderJSON(w http.ResponseWriter, err *apperr.Error) {
	body, encErr := serialize.Marshal(err)
	if encErr != nil {
		http.Error(w, `{"name":"Error","statusCode":500,"message":"Internal server error"}`,
			http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err.StatusCode)
	w.Write(body)
}

func renderHTML(w http.ResponseWriter, err *apperr.Error, stack []byte, dev bool) {
	data := pageData{
		Status:  err.StatusCode,
		Name:    err.Name,
		Message: err.Message,
	}
	if dev {
		if err.Err != nil {
			data.Cause = err.Err.Error()
		}
		data.Stack = string(stack)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(err.StatusCode)
	if tmplErr := pageTmpl.Execute(w, data); tmplErr != nil {
		fmt.Fprintf(w, "%d %s: %s", err.StatusCode, err.Name, err.Message)
	}
}

// FormatText returns a single-line log form of the error.
func FormatText(err *apperr.Error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d): %s", err.Name, err.StatusCode, err.Message)
	if err.Err != nil {
		b.WriteString(": ")
		b.WriteString(err.Err.Error())
	}
	return b.String()
}

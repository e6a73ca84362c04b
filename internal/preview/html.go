package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLRenderer turns preview views into HTML fragments
type HTMLRenderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// NewHTMLRenderer parses the embedded preview templates
func NewHTMLRenderer() (*HTMLRenderer, error) {
	r := &HTMLRenderer{policy: bluemonday.UGCPolicy()}

	tmpl, err := template.New("preview").
		Funcs(template.FuncMap{"markdown": r.markdown}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing preview templates: %w", err)
	}
	r.tmpl = tmpl

	return r, nil
}

// Render writes the HTML of a view. Unknown layouts render nothing.
func (r *HTMLRenderer) Render(v View) (template.HTML, error) {
	if v.Empty() {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, v.Layout.String(), v); err != nil {
		return "", fmt.Errorf("rendering %s preview: %w", v.Layout, err)
	}

	// output of ExecuteTemplate is already escaped
	return template.HTML(buf.String()), nil
}

// markdown renders post content and strips anything unsafe
func (r *HTMLRenderer) markdown(content string) template.HTML {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	doc := parser.NewWithExtensions(extensions).Parse([]byte(content))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})

	return template.HTML(r.policy.SanitizeBytes(markdown.Render(doc, renderer)))
}

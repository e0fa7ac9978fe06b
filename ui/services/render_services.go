package services

import (
	"bytes"
	"html/template"
	"io"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"boxplot/internal"
)

// RenderService executes page templates and renders chart descriptions.
type RenderService struct {
	templates *template.Template
	logger    *internal.Logger
}

func NewRenderService(templates *template.Template) *RenderService {
	return &RenderService{
		templates: templates,
		logger:    internal.DefaultLogger.With("Preview"),
	}
}

// RenderDescription converts a markdown chart description to HTML. Raw HTML
// in the source is dropped.
func (s *RenderService) RenderDescription(md string) template.HTML {
	if md == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}

// RenderPage executes the named template into w. The page is rendered to a
// buffer first so a failing template never leaves a half-written response.
func (s *RenderService) RenderPage(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("failed to render %s: %v", name, err)
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

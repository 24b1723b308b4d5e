// Package render provides page templates, markdown rendering and syntax highlighting.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/posts/internal/cache"
	"github.com/debemdeboas/posts/internal/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

var renderLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// Pages rendered inside the layout.
var Pages = []string{
	config.TemplateHome,
	config.TemplateList,
	config.TemplateCreate,
	config.TemplateEdit,
	config.TemplateDelete,
}

type Renderer struct {
	pages       map[string]*template.Template
	syntaxTheme string
}

// New parses every page together with the layout. It fails on the first
// template that does not parse.
func New(syntaxTheme string) (*Renderer, error) {
	r := &Renderer{
		pages:       make(map[string]*template.Template, len(Pages)),
		syntaxTheme: syntaxTheme,
	}

	for _, page := range Pages {
		tmpl, err := template.ParseFS(templatesFS,
			config.TemplatesLocalDir+"/"+config.TemplateLayout,
			config.TemplatesLocalDir+"/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("error parsing template %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}

	return r, nil
}

// Page renders page into memory so that a failing template never produces a
// partial response.
func (r *Renderer) Page(page string, data any) ([]byte, error) {
	tmpl, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown template %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, config.TemplateLayout, data); err != nil {
		return nil, fmt.Errorf("error executing template %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) SyntaxTheme() string {
	return r.syntaxTheme
}

// Markdown renders a post body, reusing earlier renders of the same content.
func (r *Renderer) Markdown(md []byte, contentHash string) template.HTML {
	return template.HTML(RenderMarkdownCached(md, contentHash, r.syntaxTheme))
}

func RenderMarkdown(md []byte, highlightTheme string) []byte {
	opts := md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank | md_html.SkipHTML,
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if code, ok := node.(*ast.CodeBlock); ok && entering {
				var lang string
				if info := code.Info; info != nil {
					lang = string(info)
				}
				highlighted := HighlightCode(string(code.Literal), lang, highlightTheme)
				fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", highlighted)
				return ast.GoToNext, true
			}

			return ast.GoToNext, false
		},
	}

	p := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.HeadingIDs | parser.BackslashLineBreak | parser.DefinitionLists | parser.AutoHeadingIDs |
			parser.Footnotes | parser.NoEmptyLineBeforeBlock,
	)

	doc := markdown.Parse(markdown.NormalizeNewlines(md), p)
	return markdown.Render(doc, md_html.NewRenderer(opts))
}

// Mutex to protect the check-render-set operation in RenderMarkdownCached
var renderCacheMutex sync.Mutex

func RenderMarkdownCached(md []byte, contentHash, highlightTheme string) []byte {
	if contentHash == "" {
		renderLogger.Warn().Msg("Content hash is empty, skipping cache check")
		return RenderMarkdown(md, highlightTheme)
	}

	// First check cache without locking (fast path for cache hits)
	if cached, found := cache.GetRenderedMarkdown(contentHash, highlightTheme); found {
		renderLogger.Debug().Str("contentHash", contentHash).Msg("Cache hit for rendered markdown")
		return cached
	}

	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := cache.GetRenderedMarkdown(contentHash, highlightTheme); found {
		return cached
	}

	renderLogger.Debug().Str("contentHash", contentHash).Msg("Cache miss for rendered markdown")
	html := RenderMarkdown(md, highlightTheme)
	cache.SetRenderedMarkdown(contentHash, highlightTheme, html)

	return html
}

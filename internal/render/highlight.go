package render

import (
	stdhtml "html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/debemdeboas/posts/internal/cache"
)

var syntaxCSSCache = cache.NewCache[string, string]()

func formatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WrapLongLines(true),
	)
}

// HighlightCode returns code as highlighted HTML. On lexer or formatter
// failure the code is returned escaped and unhighlighted.
func HighlightCode(code, language, highlightTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	var buf strings.Builder
	iterator, err := lexer.Tokenise(nil, code)
	if err == nil {
		err = formatter().Format(&buf, styles.Get(highlightTheme), iterator)
	}
	if err != nil {
		renderLogger.Warn().Err(err).Str("language", language).Msg("Highlighting failed")
		return "<pre>" + stdhtml.EscapeString(code) + "</pre>"
	}

	return buf.String()
}

// SyntaxCSS returns the stylesheet for the chroma classes emitted by HighlightCode.
func SyntaxCSS(theme string) string {
	if css, ok := syntaxCSSCache.Get(theme); ok {
		return css
	}

	var buf strings.Builder
	style := styles.Get(theme)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Pick a readable text colour when the theme doesn't supply one
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := formatter().WriteCSS(&buf, style); err != nil {
		renderLogger.Error().Err(err).Str("theme", theme).Msg("Failed to write syntax CSS")
		return ""
	}

	css := buf.String()
	syntaxCSSCache.Set(theme, css)
	return css
}

package model

import (
	"net/http"
	"strings"

	"github.com/debemdeboas/posts/internal/routes"
)

type PageData struct {
	SiteName string
	Title    string

	PageURL string
}

func NewPageData(r *http.Request, siteName, title string) *PageData {
	return &PageData{
		SiteName: siteName,
		Title:    title,
		PageURL:  r.URL.Path,
	}
}

// IsActive reports whether the nav entry for path should be highlighted.
func (pd *PageData) IsActive(path string) bool {
	if path == routes.Home {
		return pd.PageURL == routes.Home
	}
	return strings.HasPrefix(pd.PageURL, path)
}

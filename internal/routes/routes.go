// Package routes defines HTTP route constants for the application.
package routes

import "net/url"

// Named routes. Redirects always target these paths.
const (
	Home       = "/"
	PostsList  = "/posts/"
	PostCreate = "/posts/new"
)

// Mux patterns
const (
	HomePattern       = "/{$}"
	PostsListPattern  = "/posts/{$}"
	PostCreatePattern = "/posts/new"
	PostEditPattern   = "/posts/{id}/edit"
	PostDeletePattern = "/posts/{id}/delete"

	RobotsPath    = "/robots.txt"
	MetricsPath   = "/metrics"
	StaticPath    = "/static/"
	SyntaxCSSPath = "/static/syntax.css"
)

// PathID is the wildcard name used by the per-post patterns.
const PathID = "id"

func PostEdit(id string) string {
	return "/posts/" + url.PathEscape(id) + "/edit"
}

func PostDelete(id string) string {
	return "/posts/" + url.PathEscape(id) + "/delete"
}

package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HLocation     = "Location"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html; charset=utf-8"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

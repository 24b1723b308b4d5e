package config

const (
	//? These paths must match the paths in the embed directives

	StaticLocalDir = "static"
	StaticUrlPath  = "/" + StaticLocalDir + "/"

	TemplatesLocalDir = "templates"

	TemplateLayout = "layout.html"
	TemplateHome   = "home.html"
	TemplateList   = "list.html"
	TemplateCreate = "create.html"
	TemplateEdit   = "edit.html"
	TemplateDelete = "delete.html"
)

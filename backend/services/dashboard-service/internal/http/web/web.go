// Package web holds the embedded dashboard page.
package web

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates is parsed once at startup.
var Templates = template.Must(template.New("").Funcs(template.FuncMap{
	"lakhs": func(d decimal.Decimal) string { return "₹" + d.StringFixed(2) + " L" },
}).ParseFS(templateFS, "templates/*.html"))

// DashboardTemplate is the name of the main page template.
const DashboardTemplate = "dashboard.html"

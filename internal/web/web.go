// Package web holds the server-rendered pages: the marketing site and the public plan view.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Template names passed to gin's c.HTML.
const (
	LandingPage    = "landing.html"
	PricingPage    = "pricing.html"
	PublicPlanPage = "public_plan.html"
	NotFoundPage   = "not_found.html"
)

// Tier is one column of the pricing table.
type Tier struct {
	Name        string
	PriceCents  int64
	Period      string
	MaxStudents int // 0 means unlimited
	Features    []string
	Highlight   bool
}

// PricingTiers is rendered on /pricing.
var PricingTiers = []Tier{
	{
		Name:        "Starter",
		Period:      "month",
		MaxStudents: 5,
		Features:    []string{"Training plans with days, blocks and exercises", "Public share links with QR codes", "Payment tracking"},
	},
	{
		Name:        "Pro",
		PriceCents:  1900,
		Period:      "month",
		MaxStudents: 50,
		Features:    []string{"Everything in Starter", "Dashboard KPIs", "Excel exports and student import"},
		Highlight:   true,
	},
	{
		Name:       "Studio",
		PriceCents: 4900,
		Period:     "month",
		Features:   []string{"Everything in Pro", "Unlimited students", "Custom business name on shared plans"},
	},
}

var funcs = template.FuncMap{
	"money": func(cents int64) string {
		if cents == 0 {
			return "Free"
		}
		return fmt.Sprintf("$%d", cents/100)
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format("Jan 2, 2006")
	},
	"weekday": func(d *int) string {
		if d == nil || *d < 1 || *d > 7 {
			return ""
		}
		return time.Weekday(*d % 7).String()
	},
	"year": func() int { return time.Now().Year() },
}

// Templates parses every embedded page. It is called once at startup.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
}

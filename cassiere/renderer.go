package main

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/taldoflemis/pizzeria/pacchetto/order"
)

//go:embed views/*.html
var viewsFS embed.FS

//go:embed public
var publicFS embed.FS

const (
	viewHome         = "home.html"
	viewThankYou     = "thankyou.html"
	viewOrderSummary = "ordersummary.html"
)

var availableToppings = []string{"pepperoni", "mushrooms", "onions", "olives", "peppers", "cheese", "basil"}

type formPage struct {
	Prefix   string
	Toppings []string
	Sizes    []string
}

type thankYouPage struct {
	Prefix string
	Order  order.PersistedOrder
}

type orderSummaryPage struct {
	Prefix string
	Orders []order.PersistedOrder
}

type templateRenderer struct {
	templates *template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer() (*templateRenderer, error) {
	templates, err := template.New("views").
		Funcs(template.FuncMap{"toppingList": toppingList}).
		ParseFS(viewsFS, "views/*.html")
	if err != nil {
		return nil, err
	}
	return &templateRenderer{templates: templates}, nil
}

// Render implements echo.Renderer.
func (t *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func toppingList(toppings string) []string {
	if toppings == "" {
		return nil
	}
	return strings.Split(toppings, order.ToppingsSeparator)
}

// Package web renders the HTML landing page.
package web

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/jsamuelsen/quote-machine/internal/domain"
)

// HomeData carries everything the landing page shows.
type HomeData struct {
	QuoteText string
	Character string
	ImagePath string
}

// QuoteHome builds the page data for a stored quote. The portrait path is
// the lowercased character name under /static/images.
func QuoteHome(quote domain.Quote) HomeData {
	return HomeData{
		QuoteText: quote.QuoteText,
		Character: quote.Character,
		ImagePath: "/static/images/" + strings.ToLower(quote.Character) + ".jpg",
	}
}

// EmptyHome is the fallback shown when the store has no quotes yet.
func EmptyHome() HomeData {
	return HomeData{
		QuoteText: "No quotes available! Please add some quotes.",
		ImagePath: "/static/images/default.jpg",
	}
}

// ErrorHome is shown when picking a quote failed.
func ErrorHome() HomeData {
	return HomeData{
		QuoteText: "Something went wrong! Please try again.",
		ImagePath: "/static/images/default.jpg",
	}
}

// Home renders the landing page around a single quote card.
func Home(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		alt := data.Character
		if alt == "" {
			alt = "Planet Express"
		}

		caption := ""
		if data.Character != "" {
			caption = `
          <figcaption>&mdash; ` + esc(data.Character) + `</figcaption>`
		}

		return writeStrings(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Futurama Quote Machine</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Futurama Quote Machine</span>
        <h1>Words of wisdom from the year 3000</h1>
        <p>Refresh for another quote from the Planet Express crew.</p>
      </header>

      <section class="panel quote-card">
        <img class="portrait" src="`, esc(data.ImagePath), `" alt="`, esc(alt), `"/>
        <figure>
          <blockquote>`, esc(data.QuoteText), `</blockquote>`, caption, `
        </figure>
        <a class="primary" href="/">Another one</a>
      </section>
    </main>
  </body>
</html>
`)
	})
}

func esc(value string) string {
	return html.EscapeString(value)
}

func writeStrings(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}

	return nil
}

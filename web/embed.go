// Package web holds the HTML templates of the quiz pages.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed views
var viewsFS embed.FS

// NewEngine returns a template engine over the embedded views. Template names
// are their paths below views/ without the .html extension, e.g.
// "quizzes/index" or "layouts/main".
func NewEngine() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}

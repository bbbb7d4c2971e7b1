// Package web holds the embedded page templates, stylesheet and the
// helpers shared by the page handlers.
package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/model-catalog/internal/catalog/biz"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"formatNumber": biz.FormatNumber,
	"formatTokens": biz.FormatTokens,
	"formatScore":  biz.FormatScore,
	"capabilities": func(raw json.RawMessage) []string {
		return biz.EnabledCapabilities(raw)
	},
}

// Templates parses all page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

// Static serves the stylesheet under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Install wires templates and static files into the engine.
func Install(engine *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	engine.SetHTMLTemplate(tmpl)
	engine.StaticFS("/static", Static())
	return nil
}

// Render writes a page. The flash set by the previous request, if any,
// is consumed and shown.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = PopFlash(c)
	}
	c.HTML(status, name, data)
}

package api

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/openhadith/hadith-go/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// renderHadith writes the single-hadith HTML view.
func renderHadith(w http.ResponseWriter, hadith *types.SearchResult) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "single_hadith.html", hadith); err != nil {
		log.Printf("render hadith: %v", err)
	}
}

// renderNotFound writes the 404 page.
func renderNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := pageTemplates.ExecuteTemplate(w, "404.html", nil); err != nil {
		log.Printf("render 404: %v", err)
	}
}

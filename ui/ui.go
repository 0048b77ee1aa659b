// Package ui embeds the chat widget page and its assets.
package ui

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
)

//go:embed static/*
var assets embed.FS

var static = func() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}()

// Index serves the widget page.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	f, err := static.Open("index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, "index.html", fi.ModTime(), f.(io.ReadSeeker))
}

// Static serves the files under /static/.
func Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(static)))
}

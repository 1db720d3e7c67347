package handlers

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"sync"
)

//go:embed openapi.json
var openAPISpec []byte

var (
	openAPIOnce sync.Once
	openAPIDoc  map[string]any
	openAPIErr  error
)

var redocPage = template.Must(template.New("redoc").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}} {{.Version}}</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>
      body { margin: 0; padding: 0; }
      redoc { display: block; height: 100vh; }
    </style>
  </head>
  <body>
    <redoc spec-url="{{.SpecURL}}"></redoc>
    <script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
  </body>
</html>`))

// openAPIDocument returns a fresh copy of the embedded document with the
// running version and the server this request reached filled in.
func (a *App) openAPIDocument(r *http.Request) (map[string]any, error) {
	openAPIOnce.Do(func() {
		openAPIErr = json.Unmarshal(openAPISpec, &openAPIDoc)
	})
	if openAPIErr != nil {
		return nil, openAPIErr
	}

	doc := make(map[string]any, len(openAPIDoc))
	for k, v := range openAPIDoc {
		doc[k] = v
	}
	info := map[string]any{}
	if base, ok := openAPIDoc["info"].(map[string]any); ok {
		for k, v := range base {
			info[k] = v
		}
	}
	if a.APIVersion != "" {
		info["version"] = a.APIVersion
	}
	doc["info"] = info
	doc["servers"] = []map[string]string{{"url": a.serverURL(r)}}
	return doc, nil
}

// serverURL prefers the configured public URL and falls back to the host
// the request came in on.
func (a *App) serverURL(r *http.Request) string {
	if a.PublicURL != "" {
		return strings.TrimRight(a.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (a *App) OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := a.openAPIDocument(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(doc)
}

func (a *App) OpenAPIDocs(w http.ResponseWriter, r *http.Request) {
	doc, err := a.openAPIDocument(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	info, _ := doc["info"].(map[string]any)
	title, _ := info["title"].(string)
	version, _ := info["version"].(string)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = redocPage.Execute(w, map[string]string{
		"Title":   title,
		"Version": version,
		"SpecURL": "/v1/openapi.json",
	})
}

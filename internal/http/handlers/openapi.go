package handlers

import (
	_ "embed"
	"net/http"
)

// openAPISpec documents the REST routes and the /v1/ws progress frames.
//
//go:embed openapi.json
var openAPISpec []byte

// docsPage renders openapi.json with Redoc. The UI copy is Turkish first since
// that is the default response locale.
const docsPage = `<!DOCTYPE html>
<html lang="tr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>DekoAssistant API Belgeleri</title>
<style>body{margin:0}redoc{display:block;min-height:100vh}</style>
</head>
<body>
<noscript>Belgeler için JavaScript gerekli. Ham şema: <a href="/v1/openapi.json">/v1/openapi.json</a></noscript>
<redoc spec-url="/v1/openapi.json" expand-responses="200,202" path-in-middle-panel></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
</body>
</html>
`

// OpenAPIJSON serves the embedded schema.
func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(openAPISpec)
}

// OpenAPIDocs serves the browsable docs page at /v1/docs.
func (a *App) OpenAPIDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsPage))
}

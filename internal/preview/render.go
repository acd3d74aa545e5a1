package preview

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// renderMarkdown converts markdown source to an HTML fragment.
func renderMarkdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// pageTemplate is the preview shell. The inline script polls /version once
// a second and re-fetches /doc when the counter advances.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>mmv preview</title>
<style>
  body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem;
         font: 16px/1.6 -apple-system, "Segoe UI", sans-serif; color: #222; }
  pre { background: #f6f8fa; padding: .8rem; overflow-x: auto; border-radius: 6px; }
  code { font-family: ui-monospace, monospace; font-size: .92em; }
  blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
  table { border-collapse: collapse; }
  th, td { border: 1px solid #ddd; padding: .3rem .6rem; }
  #meta { color: #888; font-size: .85em; border-bottom: 1px solid #eee;
          padding-bottom: .5rem; margin-bottom: 1rem; }
</style>
</head>
<body>
<div id="meta">mmv live preview</div>
<article id="doc">Loading…</article>
<script>
let version = -1;
async function refresh() {
  const r = await fetch("/doc");
  document.getElementById("doc").innerHTML = await r.text();
}
async function poll() {
  try {
    const r = await fetch("/version");
    const v = (await r.json()).version;
    if (v !== version) { version = v; await refresh(); }
  } catch (e) { /* server gone; keep trying */ }
  setTimeout(poll, 1000);
}
poll();
</script>
</body>
</html>
`))

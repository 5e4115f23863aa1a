package httpx

import (
	"html/template"
	"net/http"
)

// The page surface is intentionally minimal: the service is primarily an
// API, and these pages exist so a browser session has somewhere to land.

var chatPage = template.Must(template.New("chat").Parse(`<!DOCTYPE html>
<html>
<head><title>Knowledge Chat</title></head>
<body>
<h1>Knowledge Chat</h1>
<p>Signed in as {{.Username}} ({{.Role}}).</p>
<form id="ask">
<input type="text" name="question" maxlength="500" placeholder="Ask a question">
<button type="submit">Ask</button>
</form>
<pre id="answer"></pre>
<script>
document.getElementById("ask").addEventListener("submit", async (e) => {
  e.preventDefault();
  const question = new FormData(e.target).get("question");
  const resp = await fetch("/chatbot/ask", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({question}),
  });
  const body = await resp.json();
  document.getElementById("answer").textContent =
    resp.ok ? body.answer : body.error.message;
});
</script>
</body>
</html>
`))

var adminPage = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head><title>Administration</title></head>
<body>
<h1>Administration</h1>
<p>Signed in as {{.Username}}.</p>
<pre id="stats">Loading...</pre>
<script>
fetch("/admin/stats").then(r => r.json()).then(body => {
  document.getElementById("stats").textContent = JSON.stringify(body, null, 2);
});
</script>
</body>
</html>
`))

const unauthorizedPage = `<!DOCTYPE html>
<html>
<head><title>Access Denied</title></head>
<body>
<h1>Access denied</h1>
<p>Your account does not have access to this page.</p>
<p><a href="/">Back to start</a></p>
</body>
</html>
`

// PageHandlers serves the minimal HTML surface.
type PageHandlers struct{}

// Chat handles the main page.
// GET /.
func (h *PageHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	principal, ok := GetPrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/auth/login?redirect=%2F", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = chatPage.Execute(w, principal)
}

// Admin handles the admin page.
// GET /admin.
func (h *PageHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	principal, ok := GetPrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/auth/login?redirect=%2Fadmin", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = adminPage.Execute(w, principal)
}

// Unauthorized handles the access denied page. It is reachable without a
// session so the gatekeeper always has somewhere safe to send a browser.
// GET /unauthorized.
func (h *PageHandlers) Unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(unauthorizedPage))
}

package api

import "net/http"

const landingPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>archive swarm tracker</title>
<style>body{font-family:sans-serif;max-width:40em;margin:3em auto;padding:0 1em}</style>
</head>
<body>
<h1>archive swarm tracker</h1>
<p>Coordination server for a volunteer archiving swarm. Workers enroll, pull
batches of video ids, upload one gzipped JSON archive per batch, and report
back. Sizes are cross-checked against finished batches before anything is
trusted.</p>
<ul>
<li><a href="/api/stats">swarm stats</a></li>
<li><code>POST /api/workers/create</code> to enroll a worker</li>
<li><code>POST /api/videos/submit</code> to suggest new video ids</li>
</ul>
</body>
</html>
`

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(landingPage))
}

package server

import "html/template"

// The OAuth landing pages are deliberately self-contained documents: the
// browser tab they render in was opened by Google's redirect, so they close
// themselves (or bounce back to the app) after a short delay.

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px; background-color: #f5f5f5;">
  <div style="background: white; padding: 40px; border-radius: 10px; max-width: 500px; margin: 0 auto;">
    <h2 style="color: #2e7d32;">Authorization Successful</h2>
    <p style="color: #666;">Google Drive access has been granted.</p>
    <p style="color: #666;">Redirecting you back to the app...</p>
    <a href="/" style="background: #1976d2; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">Return to App</a>
  </div>
  <script>
    setTimeout(function() {
      try { window.close(); } catch (e) { window.location.href = '/'; }
    }, 2000);
    setTimeout(function() { window.location.href = '/'; }, 3000);
  </script>
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorization Failed</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px; background-color: #f5f5f5;">
  <div style="background: white; padding: 40px; border-radius: 10px; max-width: 500px; margin: 0 auto;">
    <h2 style="color: #d32f2f;">Authorization Failed</h2>
    <p style="color: #666;">{{.Message}}</p>
    <p style="color: #666;">Please try again or contact support if the issue persists.</p>
    <a href="/" style="background: #1976d2; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">Return to App</a>
  </div>
  <script>
    setTimeout(function() {
      try { window.close(); } catch (e) { window.location.href = '/'; }
    }, 3000);
  </script>
</body>
</html>
`))

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Meeting Minutes Generator</title></head>
<body style="font-family: sans-serif; max-width: 700px; margin: 40px auto;">
  <h1>Meeting Minutes Generator</h1>
  <p>Authorization status: <strong>{{.Status}}</strong></p>
  <h2>API</h2>
  <ul>
    <li><code>POST /api/auth/start</code> &mdash; begin Google Drive authorization</li>
    <li><code>GET /api/auth/status</code> &mdash; current authorization state</li>
    <li><code>POST /api/auth/reset</code> &mdash; clear stored credentials</li>
    <li><code>GET /api/files</code> &mdash; list audio candidates in Drive</li>
    <li><code>POST /api/process</code> &mdash; run the pipeline, streams NDJSON updates</li>
  </ul>
</body>
</html>
`))

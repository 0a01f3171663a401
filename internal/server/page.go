package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// registerPage serves the single operator page. It only talks to the /api routes.
func registerPage(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, studioPage)
	})
}

const studioPage = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>AI News Studio</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>
      body{font-family:sans-serif;background:#141414;color:#eee;margin:0;display:flex}
      aside{width:280px;padding:1rem;background:#1f1f1f;min-height:100vh}
      main{flex:1;padding:1rem 2rem}
      input,select,button{width:100%;margin:.3rem 0;padding:.4rem}
      .err{color:#ff6b6b}.ok{color:#7bd88f}
      progress{width:100%}
      video{max-height:70vh}
    </style>
  </head>
  <body>
    <aside>
      <h3>API Keys</h3>
      <input id="news" type="password" placeholder="NewsAPI key" />
      <input id="llm" type="password" placeholder="OpenAI key" />
      <button onclick="saveKeys()">Save keys</button>
    </aside>
    <main>
      <h1>AI News Studio</h1>
      <button onclick="fetchNews()">Fetch trending news</button>
      <p id="status"></p>
      <select id="headlines" onchange="pick()"></select>
      <button id="produce" onclick="produce()" disabled>Produce video</button>
      <progress id="bar" max="100" value="0" hidden></progress>
      <div id="result"></div>
    </main>
    <script>
      const $ = id => document.getElementById(id);
      const say = (msg, ok) => { $('status').textContent = msg; $('status').className = ok ? 'ok' : 'err'; };
      async function call(method, path, body) {
        const res = await fetch(path, {method, headers: {'Content-Type': 'application/json'}, body: body && JSON.stringify(body)});
        const data = res.status === 204 ? {} : await res.json();
        if (!res.ok) throw new Error(data.error || res.statusText);
        return data;
      }
      async function saveKeys() {
        await call('PUT', '/api/session/credentials', {news_api_key: $('news').value, llm_api_key: $('llm').value});
        say('Keys saved for this session.', true);
      }
      async function fetchNews() {
        try {
          const data = await call('POST', '/api/headlines');
          $('headlines').innerHTML = data.headlines.map((h, i) => '<option value="' + i + '"></option>').join('');
          data.headlines.forEach((h, i) => { $('headlines').options[i].textContent = h.title; });
          say(data.message, true);
          await pick();
        } catch (e) { $('headlines').innerHTML = ''; $('produce').disabled = true; say(e.message); }
      }
      async function pick() {
        try {
          await call('PUT', '/api/selection', {index: Number($('headlines').value)});
          $('produce').disabled = false;
        } catch (e) { say(e.message); }
      }
      async function produce() {
        $('bar').hidden = false; $('bar').removeAttribute('value'); $('produce').disabled = true;
        try {
          const p = await call('POST', '/api/productions');
          $('result').innerHTML = '<video controls src="' + p.video_url + '?t=' + Date.now() + '"></video>' +
            '<p><a href="' + p.download_url + '">Download MP4</a></p><h3>Script</h3><p id="script"></p>' +
            '<p>Words: ' + p.words + ' | Length: ' + p.length + '</p>';
          $('script').textContent = p.script;
          say('Production complete', true);
        } catch (e) { say(e.message); }
        $('bar').hidden = true; $('produce').disabled = false;
      }
    </script>
  </body>
</html>`

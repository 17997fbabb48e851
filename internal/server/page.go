// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// page.go - the inlined chat page template for the gemrun web surface.
package server

import "html/template"

// chatPageTemplate is the whole chat page: sidebar, transcript, suggestion
// chips, mode toggle, input form, and the copy/submit script. Message
// bodies arrive pre-rendered by the markdown formatter; everything else is
// escaped by html/template.
var chatPageTemplate = template.Must(template.New("chat").Parse(chatPageHTML))

const chatPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #16161e; --surface: #1f1f2b; --border: #33334a;
    --text: #d5d5e0; --muted: #8c8ca0; --accent: #7f5fff;
    --user: #2a2a3d; --failed: #e06c75; --ok: #50c878;
  }
  * { box-sizing: border-box; }
  body {
    margin: 0; display: flex; height: 100vh;
    background: var(--bg); color: var(--text);
    font: 15px/1.5 system-ui, sans-serif;
  }
  nav {
    width: 230px; border-right: 1px solid var(--border);
    padding: 12px; overflow-y: auto; flex-shrink: 0;
  }
  nav h1 { font-size: 16px; color: var(--accent); margin: 0 0 12px; }
  .conv {
    display: block; padding: 6px 8px; margin-bottom: 4px;
    border-radius: 6px; color: var(--text); text-decoration: none;
    cursor: pointer; overflow: hidden; white-space: nowrap;
    text-overflow: ellipsis;
  }
  .conv:hover { background: var(--surface); }
  .conv.active { background: var(--surface); border-left: 2px solid var(--accent); }
  .conv .date { color: var(--muted); font-size: 12px; margin-right: 6px; }
  main { flex: 1; display: flex; flex-direction: column; min-width: 0; }
  header {
    display: flex; align-items: center; gap: 12px;
    padding: 10px 16px; border-bottom: 1px solid var(--border);
  }
  header .title { font-weight: 600; flex: 1; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
  #transcript { flex: 1; overflow-y: auto; padding: 16px; }
  .msg { max-width: 760px; margin: 0 auto 14px; }
  .msg .who { font-size: 12px; color: var(--muted); margin-bottom: 2px; }
  .msg.user .body { background: var(--user); border-radius: 8px; padding: 8px 12px; }
  .msg.failed .body { color: var(--failed); }
  .code-block { background: var(--surface); border: 1px solid var(--border); border-radius: 8px; margin: 8px 0; }
  .code-header {
    display: flex; justify-content: space-between; align-items: center;
    padding: 4px 10px; border-bottom: 1px solid var(--border);
    font-size: 12px; color: var(--muted);
  }
  .copy-btn {
    background: none; border: 1px solid var(--border); border-radius: 4px;
    color: var(--muted); font-size: 12px; padding: 2px 8px; cursor: pointer;
  }
  .copy-btn.copied { color: var(--ok); border-color: var(--ok); }
  pre { margin: 0; padding: 10px; overflow-x: auto; }
  .inline-code { background: var(--surface); border-radius: 4px; padding: 1px 5px; }
  #chips { padding: 0 16px 8px; max-width: 792px; margin: 0 auto; width: 100%; }
  .chip {
    display: inline-block; margin: 0 6px 6px 0; padding: 4px 10px;
    background: var(--surface); border: 1px solid var(--border);
    border-radius: 999px; font-size: 13px; cursor: pointer;
  }
  .chip:hover { border-color: var(--accent); }
  .deck-name { display: block; color: var(--muted); font-size: 12px; margin: 6px 0 2px; }
  form {
    display: flex; gap: 8px; padding: 12px 16px;
    border-top: 1px solid var(--border); max-width: 792px;
    margin: 0 auto; width: 100%;
  }
  form input[type=text] {
    flex: 1; background: var(--surface); border: 1px solid var(--border);
    border-radius: 8px; color: var(--text); padding: 10px 12px; font: inherit;
  }
  form button[type=submit] {
    background: var(--accent); border: none; border-radius: 8px;
    color: #fff; padding: 0 18px; font: inherit; cursor: pointer;
  }
  form button[type=submit]:disabled { opacity: 0.5; cursor: wait; }
  label.mode { display: flex; align-items: center; gap: 6px; color: var(--muted); font-size: 13px; }
</style>
</head>
<body>
<nav>
  <h1>gemrun</h1>
  <a class="conv" href="/?new=1">+ New chat</a>
  {{range .Conversations}}
  <a class="conv{{if eq .ID $.ActiveID}} active{{end}}" href="/?c={{.ID}}">
    <span class="date">{{.Date}}</span>{{.Title}}
  </a>
  {{end}}
</nav>
<main>
  <header>
    <span class="title">{{if .ActiveTitle}}{{.ActiveTitle}}{{else}}New chat{{end}}</span>
    <label class="mode">
      <input type="checkbox" id="simple" {{if .SimpleMode}}checked{{end}}>
      Simple answers
    </label>
  </header>
  <div id="transcript">
    {{range .Messages}}
    <div class="msg {{.Role}}{{if .Failed}} failed{{end}}">
      <div class="who">{{.Label}}</div>
      <div class="body">{{.HTML}}</div>
    </div>
    {{end}}
  </div>
  {{if not .Messages}}
  <div id="chips">
    {{range .Decks}}
    <span class="deck-name">{{.Name}}</span>
    {{range .Prompts}}<span class="chip">{{.}}</span>{{end}}
    {{end}}
  </div>
  {{end}}
  <form id="chat-form" autocomplete="off">
    <input type="text" id="text" placeholder="Ask anything..." autofocus>
    <button type="submit" id="send">Send</button>
  </form>
</main>
<script>
(function () {
  "use strict";

  var conversationID = {{.ActiveID}};
  var transcript = document.getElementById("transcript");
  var form = document.getElementById("chat-form");
  var input = document.getElementById("text");
  var send = document.getElementById("send");
  var simple = document.getElementById("simple");

  // Copy buttons: write the data-copy payload and flip the label for two
  // seconds. A re-copy restarts the timer instead of letting the stale
  // one clear the fresh flash.
  document.addEventListener("click", function (e) {
    var btn = e.target.closest(".copy-btn");
    if (!btn) return;
    navigator.clipboard.writeText(btn.getAttribute("data-copy")).then(function () {
      btn.textContent = "Copied!";
      btn.classList.add("copied");
      clearTimeout(btn._resetTimer);
      btn._resetTimer = setTimeout(function () {
        btn.textContent = "Copy";
        btn.classList.remove("copied");
      }, 2000);
    });
  });

  // Suggestion chips fill the input.
  document.addEventListener("click", function (e) {
    var chip = e.target.closest(".chip");
    if (!chip) return;
    input.value = chip.textContent;
    input.focus();
  });

  function appendMessage(msg) {
    var div = document.createElement("div");
    div.className = "msg " + msg.role + (msg.failed ? " failed" : "");
    var who = document.createElement("div");
    who.className = "who";
    who.textContent = msg.role === "user" ? "You" : "Gemini";
    var body = document.createElement("div");
    body.className = "body";
    body.innerHTML = msg.html;
    div.appendChild(who);
    div.appendChild(body);
    transcript.appendChild(div);
    transcript.scrollTop = transcript.scrollHeight;
  }

  form.addEventListener("submit", function (e) {
    e.preventDefault();
    var text = input.value.trim();
    if (!text) return;

    send.disabled = true;
    var chips = document.getElementById("chips");
    if (chips) chips.remove();

    fetch("/api/chat", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({
        conversation_id: conversationID,
        text: text,
        simple: simple.checked
      })
    }).then(function (resp) {
      if (resp.status === 409) throw new Error("Still thinking, hold on.");
      if (!resp.ok) throw new Error("Request failed (" + resp.status + ")");
      return resp.json();
    }).then(function (data) {
      conversationID = data.conversation.id;
      transcript.innerHTML = "";
      data.messages.forEach(appendMessage);
      input.value = "";
    }).catch(function (err) {
      appendMessage({ role: "assistant", failed: true, html: "" });
      transcript.lastChild.querySelector(".body").textContent = err.message;
    }).finally(function () {
      send.disabled = false;
      input.focus();
    });
  });
})();
</script>
</body>
</html>
`

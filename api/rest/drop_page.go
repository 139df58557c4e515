package rest

import (
	"html/template"
	"log"
	"net/http"
)

// The drop page is a static shell: it never embeds message data, only the
// token, and performs the JSON fetch client-side with no-store semantics.
var dropPageTmpl = template.Must(template.New("drop").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Anonymous Drop - Connect360</title>
<style>
body { margin: 0; padding: 20px; min-height: 100vh; font-family: sans-serif; color: #0f172a;
       background: #f8fafc; display: flex; align-items: center; justify-content: center; }
.container { width: 100%; max-width: 460px; display: grid; gap: 14px; }
.card { background: #ffffff; border: 1px solid #cbd5e1; border-radius: 18px; padding: 18px; }
h1 { margin: 0 0 8px; font-size: 22px; }
.subtitle { margin: 0; color: #475569; font-size: 14px; }
.token { margin-top: 10px; font-size: 11px; color: #64748b; background: #f1f5f9;
         border-radius: 8px; padding: 8px; word-break: break-all; }
textarea { width: 100%; min-height: 120px; border: 1px solid #cbd5e1; border-radius: 12px;
           padding: 12px; font: inherit; resize: vertical; box-sizing: border-box; }
.actions { display: flex; gap: 8px; margin-top: 12px; }
button { border: none; border-radius: 10px; padding: 11px 14px; font: inherit; font-weight: 600; cursor: pointer; }
.send { flex: 1; background: #0f766e; color: #ffffff; }
.refresh { background: #ccfbf1; color: #042f2e; }
.status { margin-top: 10px; min-height: 20px; font-size: 13px; color: #475569; }
.status.error { color: #b91c1c; }
.item { border: 1px solid #dbeafe; background: #f8fafc; border-radius: 10px; padding: 10px; margin-top: 8px; }
.item-content { margin: 0 0 6px; line-height: 1.4; word-break: break-word; }
.item-time { margin: 0; color: #64748b; font-size: 11px; }
.empty { color: #64748b; font-size: 13px; margin-top: 6px; }
</style>
</head>
<body>
<div class="container">
  <section class="card">
    <h1>Anonymous Notice Drop</h1>
    <p class="subtitle">Send a short notice. No sender or receiver identity is stored. Messages expire in 7 days.</p>
    <p class="token">Drop Token: {{.Token}}</p>
  </section>
  <section class="card">
    <textarea id="content" maxlength="300" placeholder="Write a short notice (max 300 chars)..."></textarea>
    <div class="actions">
      <button class="send" id="sendBtn">Send Notice</button>
      <button class="refresh" id="refreshBtn" type="button">Refresh</button>
    </div>
    <div class="status" id="status"></div>
    <div id="list"></div>
    <p class="empty" id="empty">No active notices right now.</p>
  </section>
</div>
<script>
const token = {{.Token}};
const contentEl = document.getElementById('content');
const statusEl = document.getElementById('status');
const listEl = document.getElementById('list');
const emptyEl = document.getElementById('empty');
const sendBtn = document.getElementById('sendBtn');

const setStatus = (message, isError = false) => {
  statusEl.className = isError ? 'status error' : 'status';
  statusEl.textContent = message || '';
};

const renderMessages = (messages) => {
  const now = Date.now();
  const active = (Array.isArray(messages) ? messages : []).filter((item) => {
    const expiry = new Date(item.expiresAt).getTime();
    return Number.isFinite(expiry) && expiry > now;
  });
  listEl.innerHTML = '';
  emptyEl.style.display = active.length ? 'none' : 'block';
  active.forEach((item) => {
    const wrapper = document.createElement('article');
    wrapper.className = 'item';
    const content = document.createElement('p');
    content.className = 'item-content';
    content.textContent = item.content;
    const meta = document.createElement('p');
    meta.className = 'item-time';
    meta.textContent = new Date(item.createdAt).toLocaleString();
    wrapper.appendChild(content);
    wrapper.appendChild(meta);
    listEl.appendChild(wrapper);
  });
};

const fetchMessages = async () => {
  try {
    const response = await fetch('/drop/' + encodeURIComponent(token) + '?format=json', { cache: 'no-store' });
    const payload = await response.json();
    renderMessages(payload.messages);
  } catch {
    setStatus('Could not refresh messages. Try again.', true);
  }
};

sendBtn.addEventListener('click', async () => {
  const rawContent = contentEl.value || '';
  if (!rawContent.trim()) {
    setStatus('Message cannot be empty.', true);
    return;
  }
  sendBtn.disabled = true;
  setStatus('Sending...');
  try {
    const response = await fetch('/drop/' + encodeURIComponent(token), {
      method: 'POST',
      headers: { 'Content-Type': 'application/json', 'Accept': 'application/json' },
      cache: 'no-store',
      body: JSON.stringify({ content: rawContent }),
    });
    if (!response.ok) {
      setStatus('Request was throttled. Try again shortly.', true);
    } else {
      contentEl.value = '';
      setStatus('Notice submitted.');
      await fetchMessages();
    }
  } catch {
    setStatus('Could not send right now. Try again.', true);
  }
  sendBtn.disabled = false;
});

document.getElementById('refreshBtn').addEventListener('click', fetchMessages);
fetchMessages();
</script>
</body>
</html>
`))

func (h *Handler) renderDropPage(w http.ResponseWriter, token string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dropPageTmpl.Execute(w, struct{ Token string }{Token: token}); err != nil {
		log.Printf("Failed to render drop page: %v", err)
	}
}

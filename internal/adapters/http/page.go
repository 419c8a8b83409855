package http

// indexHTML is the operator page. Each container drops its processed marker
// before new source is mounted so Mermaid draws it again.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Pipenet</title>
    <style>
        body { font-family: sans-serif; margin: 1rem; }
        .diagram { border: 1px solid #ccc; padding: .5rem; margin-bottom: 1rem; min-height: 6rem; }
        #toasts { position: fixed; right: 1rem; bottom: 1rem; }
        .toast { padding: .5rem 1rem; margin-top: .5rem; background: #333; color: #fff; border-radius: 4px; }
        .toast.error { background: #d32f2f; }
        .toast.success { background: #2e7d32; }
    </style>
</head>
<body>
<h1>Pipe network</h1>
<form id="route">
    <input name="start" placeholder="Start" required />
    <input name="goal" placeholder="Goal" required />
    <button type="submit">Suggest route</button>
    <button type="button" id="confirm">Start route</button>
    <button type="button" id="cancel">Cancel</button>
    <button type="button" id="refresh">Refresh</button>
</form>
<h2>Flowchart</h2>
<div class="diagram"><pre class="mermaid" id="flowchart"></pre></div>
<h2>Segments</h2>
<div class="diagram"><pre class="mermaid" id="compact"></pre></div>
<div id="toasts"></div>
<script type="module">
    import mermaid from 'https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs';
    mermaid.initialize({ startOnLoad: false });

    const post = (path, body) => fetch(path, {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: body ? JSON.stringify(body) : undefined,
    });

    async function mount(container) {
        const el = document.getElementById(container.name);
        if (!el || container.error) return;
        el.removeAttribute('data-processed');
        el.textContent = container.source;
        await mermaid.run({ nodes: [el] });
    }

    function toast(n) {
        const div = document.createElement('div');
        div.className = 'toast ' + n.level;
        div.textContent = n.message;
        document.getElementById('toasts').appendChild(div);
        setTimeout(() => div.remove(), 5000);
    }

    document.querySelectorAll('.diagram').forEach((el) => {
        el.addEventListener('mouseenter', () => post('/api/pointer/enter'));
        el.addEventListener('mouseleave', () => post('/api/pointer/leave'));
    });

    document.getElementById('route').addEventListener('submit', async (e) => {
        e.preventDefault();
        const data = new FormData(e.target);
        const res = await post('/api/routes/suggest', { start: data.get('start'), goal: data.get('goal') });
        if (!res.ok) toast({ level: 'error', message: await res.text() });
    });
    document.getElementById('confirm').addEventListener('click', () => post('/api/routes/confirm'));
    document.getElementById('cancel').addEventListener('click', () => post('/api/routes/cancel'));
    document.getElementById('refresh').addEventListener('click', () => post('/api/refresh'));

    const events = new EventSource('/events');
    events.addEventListener('diagram', (e) => mount(JSON.parse(e.data)));
    events.addEventListener('notify', (e) => toast(JSON.parse(e.data)));
    events.addEventListener('topology', (e) => {
        const d = JSON.parse(e.data);
        const n = (d.added || []).length + (d.removed || []).length + (d.changed || []).length;
        toast({ level: 'info', message: 'Topology #' + d.sequence + ': ' + n + ' segment(s) changed' });
    });
</script>
</body>
</html>
`

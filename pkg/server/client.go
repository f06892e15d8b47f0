package server

// RootAttr marks the container the client script re-renders.
const RootAttr = "data-tnt-root"

// clientScript forwards events on hydrated elements and hash changes to the
// server and swaps in every render it receives.
const clientScript = `<script>
(function () {
  var root = document.querySelector("[data-tnt-root]");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  function send(msg) {
    if (ws.readyState === 1) ws.send(JSON.stringify(msg));
  }
  ["click", "input", "change", "submit", "keydown"].forEach(function (type) {
    document.addEventListener(type, function (ev) {
      var el = ev.target.closest && ev.target.closest("[data-tid]");
      if (!el) return;
      if (type === "submit") ev.preventDefault();
      send({type: "event", id: el.getAttribute("data-tid"), event: type,
            value: ev.target.value === undefined ? "" : String(ev.target.value)});
    }, true);
  });
  window.addEventListener("hashchange", function () {
    send({type: "hash", hash: location.hash});
  });
  ws.onopen = function () {
    if (location.hash) send({type: "hash", hash: location.hash});
  };
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "render" && root) root.innerHTML = msg.html;
    else if (msg.type === "error") console.warn("tnt:", msg.code, msg.message);
  };
})();
</script>`

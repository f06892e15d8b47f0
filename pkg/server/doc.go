// Package server is the live preview server for a mounted app.
//
// The browser receives the rendered document plus a small client script.
// The script reports events on elements carrying a data-tid hydration ID and
// hash changes over a websocket. The server applies each message on a single
// run loop and answers with the container's new HTML whenever the document
// changed:
//
//	-> {"type":"event","id":"h3","event":"click","value":""}
//	<- {"type":"render","html":"...","mutations":2}
//
// Malformed messages and unknown element ids are answered with an E011 error
// message and otherwise ignored.
//
// Routes:
//
//	GET /         rendered document
//	GET /ws       websocket channel
//	GET /metrics  Prometheus metrics
//	GET /healthz  liveness
package server

// Package inspect streams reactive runtime events over WebSocket for
// development tooling. A Hub installs as the runtime probe and fans events
// out to connected clients; Server mounts the hub plus a Prometheus
// endpoint on a chi router.
package inspect

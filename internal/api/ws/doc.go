// Package ws streams ranked catalog results to WebSocket clients and relays
// start requests from the action dispatcher to them.
//
// Message Types (Client → Server):
//   - query: replace the filter query ({"type":"query","query":"ma"})
//   - activate: primary activation of an item ({"type":"activate","item_id":"..."})
//   - secondary: secondary activation of an item
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - connected: handshake with the connection id
//   - result: a ranked result (sent on connect and on every change)
//   - start: a start request the host should execute
//   - ack: an action completed
//   - pong: reply to ping
//   - error: the last message failed
//
// Example Usage:
//
//	hub := ws.NewHub(logger)
//	eng, _ := engine.New(ctx, engine.Deps{Sink: hub, ...}, cfg)
//	router.GET("/stream", ws.NewHandler(hub, eng, logger).HandleConnection)
package ws

// Package ws streams the live monitoring status to WebSocket clients.
//
// The hub broadcasts a status frame (health, active alerts, performance
// summary) to every connected client on a fixed interval, and sends one
// frame immediately on connect. Slow clients whose outgoing buffer fills are
// disconnected rather than allowed to stall the broadcast.
package ws

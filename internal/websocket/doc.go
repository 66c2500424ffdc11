// Package websocket pushes live board events to dashboard clients.
//
// A Hub fans out JSON envelopes ({type, data, timestamp, trace_id}) to every
// connected Client. Notifier plugs the hub into the board service so each
// published snapshot becomes a "board:updated" message and each failed
// refresh a "board:refresh_failed" message. Clients never send commands;
// inbound frames only keep the connection alive.
//
// Broadcasting never blocks the caller. A full queue drops the message and a
// client whose send buffer is full is disconnected.
package websocket

// Package msgs defines the messages a receiver exchanges with remote
// peers.
package msgs

// Every message is wrapped in a Typed envelope carrying its TypeID and,
// for commands and their replies, a sequence number. The high bit of the
// TypeID tells events from commands, TypeIDMaskReply marks replies.
//
// Producer: alpharxd
// Consumer: monitors, dashboards, remote controllers

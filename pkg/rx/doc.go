// Package rx runs an AlphaRX receiver as a service: it owns the device,
// configures it and keeps polling for packets, handing every event to
// the registered publishers.
package rx

// Package host binds the receiver lines to real GPIO.
//
// Backends never return errors from Set or Get: the serial protocol is
// open loop. The first I/O error is kept and reported by Err, and every
// later operation becomes a no-op.
package host

// Package alpharx drives an AlphaRX (Si4320) FM receiver over a bit-banged
// serial interface.
package alpharx

// The receiver is connected with six lines:
//
//   nSEL  select, active low (output)
//   SDO   data to the chip (output)
//   SDI   data from the chip (input)
//   SCK   clock, the chip samples SDO on the rising edge (output)
//   nIRQ  ready, low when a frame is waiting in the FIFO (input)
//   nFFS  frame advance, low while a FIFO byte is clocked out (output)
//
// Every transaction goes Idle -> Selected -> Clocking -> Idle and none of
// them may overlap on one set of lines. Driver does no locking, callers
// serialize access.

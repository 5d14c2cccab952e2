// Package scheduling computes appointment availability for a doctor's working day.
//
// Everything here is a pure function over explicit inputs: a weekly schedule
// snapshot, the doctor's appointments and a few policy values. Nothing is cached
// and nothing performs I/O, so results are safe to compute concurrently and are
// identical for identical inputs. Slot lists are advisory; the booking path must
// repeat the check with EvaluateSlot when it writes.
package scheduling

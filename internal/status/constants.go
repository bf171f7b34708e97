// internal/status/constants.go
package status

// Status values are part of the HTTP and MQTT surface and MUST NOT be configurable.

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first cycle completes.
const HealthUnknown uint16 = 0

// HealthOK represents a device whose last cycle succeeded.
const HealthOK uint16 = 1

// HealthError represents a device whose last cycle failed.
const HealthError uint16 = 2

// ---- ERROR CODES ----

// CodeNone is reported while healthy.
const CodeNone uint16 = 0

// CodeGeneric is reported for errors that expose no better code.
const CodeGeneric uint16 = 1

// CodeTransport is a link-level read failure (timeout, CRC, closed port).
const CodeTransport uint16 = 2

// CodeTimeout is a cycle aborted by a deadline.
const CodeTimeout uint16 = 3

// CodeCancelled is a cycle aborted by shutdown.
const CodeCancelled uint16 = 4

// CodeInternal is a planner or demux invariant violation.
const CodeInternal uint16 = 5

// CodeEmptyRequest is a plan built from no addresses.
const CodeEmptyRequest uint16 = 6

// CodeInvalidSchema is a rejected schema.
const CodeInvalidSchema uint16 = 7

// CodeUnknownAddress is a lookup outside the schema.
const CodeUnknownAddress uint16 = 8

// Device exceptions are reported as CodeExceptionBase | exception code.
const CodeExceptionBase uint16 = 0x100

// ---- LIMITS ----

// SecondsInErrorMax is where SecondsInError saturates. It MUST NOT wrap.
const SecondsInErrorMax uint16 = 65535

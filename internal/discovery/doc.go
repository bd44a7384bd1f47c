// Package discovery enumerates USB devices on the host.
//
// The codec itself only ever opens the one known vendor/product pair;
// this package exists for the `scan` command, which lists what is attached
// (optionally filtered by vendor) so users can tell whether the supported
// mouse is present before anything tries to claim it. Enumeration reads
// device descriptors only and never opens a handle.
package discovery

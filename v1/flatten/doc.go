// Package flatten decomposes a decoded message into independent time series
// points.
//
// Every leaf value gets a key built from the field names on its path, joined
// by "/", with "[i]" appended at each repeated field:
//
//	message M { double x = 1; repeated string tags = 2; M child = 3; }
//
//	x       3.5
//	tags[0] "a"
//	tags[1] "b"
//
// Keys are deterministic for a given schema, path and index, so flattening
// the same payload twice yields the same keys and values.
package flatten

// Package compare extracts the nodes of Arches-style model documents and
// diffs two node sets by nodeid. It partitions nodes into those present only
// in the first document, only in the second, and in both, and records
// field-level differences for shared nodes.
package compare

// Package spaview provides a declarative route table for single page applications
// with views that are either available up front or fetched on demand.
//
// A [RouteTable] is built once at startup from a tree of [RouteNode] values and is
// read-only afterwards. A [Navigator] matches each navigation against the table,
// renders an interim view while deferred views load, and drops results that arrive
// after a newer navigation has started.
package spaview

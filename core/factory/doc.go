// Package factory provides a small generic registry used to instantiate
// modules from configuration. A module is described by a type string and a
// map of raw settings; factories decode the settings into typed structs and
// return the concrete implementation. The metrics sinks are wired this way so
// new sinks can be added without touching the service assembly.
package factory

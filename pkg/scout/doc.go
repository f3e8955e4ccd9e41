// Package scout discovers zlink routers on the local network via mDNS.
//
// Routers announce themselves under the "_zlink._tcp" service type with
// their node id, protocol version and locators in TXT records. Peers run
// a bounded scouting round with Find, or stream discoveries with Browse,
// and feed the resulting locators into their session configuration.
//
// Scouting is a convenience for zero-configuration deployments; sessions
// with explicit connect endpoints never need it.
package scout

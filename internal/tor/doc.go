// Package tor starts an embedded Tor daemon so that article and image
// requests can be routed through the Tor network.
//
// The daemon is managed with tornago. Its SOCKS5 address is handed to
// fetch.NewHTTPClient like any other proxy; nothing else in wikitree knows
// that Tor is involved.
package tor

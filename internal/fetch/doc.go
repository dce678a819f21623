// Package fetch provides the network side of an inspection: HTTP clients
// with optional SOCKS5 or embedded Tor routing, per-site request
// decoration, and the static document provider that loads a page over HTTP
// and parses it into a dom.Snapshot.
//
// Clients are created per target so that site-specific cookies, headers and
// user agents never leak between sites.
package fetch

package interfaces

import "net/url"

// -----------------------------------------------------------------------------
// IProxyPool is the set of outbound proxies a network manager cycles through.
// -----------------------------------------------------------------------------

type IProxyPool interface {

	// Current returns the proxy to dial through; false means connect directly.
	Current() (*url.URL, bool)

	// Next moves to the following proxy after a failed attempt.
	Next()

	Len() int

	// -----------------------------------------------------------------------------

	// UserAgent is sent on every outbound request.
	UserAgent() string
}

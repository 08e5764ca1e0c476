package factories

import (
	"github.com/frankli0324/go-http-factories/internal/dialer"
)

// Dialers are responsible for creating the underlying streams requests of the
// simple factory are written to and responses are read from, for example a raw
// TCP connection.
//
// A Dialer MUST NOT hold connection state, every request of the simple factory
// dials a fresh connection and closes it along with the response. It SHOULD
// hold the connection related configs like [ProxyConfig] or *[tls.Config].
type Dialer = dialer.Dialer

// CoreDialer is the default implementation of the [Dialer] interface.
type CoreDialer = dialer.CoreDialer

type ProxyConfig = dialer.ProxyConfig

// ResolveConfig customizes hostname resolution: static hosts, a dedicated DNS
// server and the address family. The standard library only follows the system
// configuration, so a Go resolver with a [net.Resolver.Dial] hook is used.
type ResolveConfig = dialer.ResolveConfig

// ProxyFromEnvironment picks proxies from HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
var ProxyFromEnvironment = dialer.ProxyFromEnvironment

// FixedProxy routes every connection through proxy.
var FixedProxy = dialer.FixedProxy

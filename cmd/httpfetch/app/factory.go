package app

import (
	"crypto/tls"
	nethttp "net/http"
	"net/url"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	factories "github.com/frankli0324/go-http-factories"
	"github.com/frankli0324/go-http-factories/internal/config"
)

// buildFactory returns the factory selected by cfg and a function releasing
// whatever it holds on to.
func buildFactory(cfg config.Config, logger hclog.Logger) (factories.RequestFactory, func(), error) {
	var proxy *url.URL
	if cfg.Proxy != "" {
		p, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, nil, errors.Wrap(err, "parse proxy")
		}
		proxy = p
	}
	var tlsConfig *tls.Config
	if cfg.Insecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	switch cfg.Factory {
	case config.FactoryClient:
		opts := factories.ClientOptions{
			Timeout:      cfg.Timeout,
			TLSConfig:    tlsConfig,
			DisableHTTP2: !cfg.HTTP2,
			RetryMax:     cfg.Retry.Max,
			RetryWaitMin: cfg.Retry.WaitMin,
			RetryWaitMax: cfg.Retry.WaitMax,
			Logger:       logger.Named("client"),
		}
		if proxy != nil {
			opts.Proxy = nethttp.ProxyURL(proxy)
		}
		f, err := factories.NewClientFactory(opts)
		if err != nil {
			return nil, nil, err
		}
		return f, f.CloseIdleConnections, nil
	case config.FactorySimple:
		hosts, err := cfg.DNS.Hosts()
		if err != nil {
			return nil, nil, err
		}
		d := &factories.CoreDialer{
			TLSConfig: tlsConfig,
			GetProxy:  factories.ProxyFromEnvironment(),
			Timeout:   cfg.Timeout,
		}
		if proxy != nil {
			d.GetProxy = factories.FixedProxy(proxy)
		}
		if cfg.DNS.Server != "" || cfg.DNS.Network != "" || hosts != nil {
			d.ResolveConfig = &factories.ResolveConfig{
				CustomDNSServer: cfg.DNS.Server,
				Network:         cfg.DNS.Network,
				StaticHosts:     hosts,
			}
		}
		f := factories.NewSimpleFactory(
			factories.WithDialer(d),
			factories.WithReadTimeout(cfg.ReadTimeout),
			factories.WithLogger(logger.Named("simple")),
		)
		return f, func() {}, nil
	}
	return nil, nil, errors.Errorf("unknown factory %q", cfg.Factory)
}

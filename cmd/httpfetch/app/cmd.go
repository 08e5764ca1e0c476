package app

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	factories "github.com/frankli0324/go-http-factories"
	"github.com/frankli0324/go-http-factories/internal/config"
	"github.com/frankli0324/go-http-factories/mediatype"
)

type options struct {
	configPath string
	method     string
	headers    []string
	data       string
	include    bool

	// overrides of the loaded configuration, applied only when set
	factory     string
	accept      string
	timeout     time.Duration
	readTimeout time.Duration
	retryMax    int
	logLevel    string
	proxy       string
	insecure    bool
	noHTTP2     bool
}

func NewHTTPFetchCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "httpfetch [flags] URL",
		Short: "Send a single HTTP request",
		Long: `httpfetch sends one request through either request factory and prints the response.

Configuration is read from built-in defaults, an optional TOML file (--config)
and HTTPFETCH_* environment variables, in that order. Flags win over all of them.

Examples:
  # GET through the simple factory, printing response headers
  httpfetch -i https://example.com/

  # POST a JSON body through the client library factory with retries
  httpfetch --factory client --retry-max 3 -H 'Content-Type: application/json' -d '{"a":1}' https://example.com/api`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.configPath, "config", "c", "", "path of a TOML configuration file")
	flags.StringVarP(&o.method, "request", "X", "GET", "request method, POST when --data is given")
	flags.StringArrayVarP(&o.headers, "header", "H", nil, "request header as 'Name: value', repeatable")
	flags.StringVarP(&o.data, "data", "d", "", "request body, @file reads it from a file")
	flags.BoolVarP(&o.include, "include", "i", false, "print the status line and response headers")

	flags.StringVar(&o.factory, "factory", config.FactorySimple, "request factory, simple or client")
	flags.StringVar(&o.accept, "accept", "*/*", "comma separated media types sent as Accept")
	flags.DurationVar(&o.timeout, "timeout", 0, "timeout of the whole exchange")
	flags.DurationVar(&o.readTimeout, "read-timeout", 0, "timeout of a single read, simple factory only")
	flags.IntVar(&o.retryMax, "retry-max", 0, "retries made by the client factory")
	flags.StringVar(&o.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error or off")
	flags.StringVar(&o.proxy, "proxy", "", "proxy url, defaults to the *_PROXY environment variables")
	flags.BoolVarP(&o.insecure, "insecure", "k", false, "skip TLS certificate verification")
	flags.BoolVar(&o.noHTTP2, "no-http2", false, "disable HTTP/2, client factory only")

	return cmd
}

func (o *options) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("factory") {
		cfg.Factory = o.factory
	}
	if flags.Changed("accept") {
		cfg.Accept = o.accept
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout = o.readTimeout
	}
	if flags.Changed("retry-max") {
		cfg.Retry.Max = o.retryMax
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("proxy") {
		cfg.Proxy = o.proxy
	}
	if flags.Changed("insecure") {
		cfg.Insecure = o.insecure
	}
	if flags.Changed("no-http2") {
		cfg.HTTP2 = !o.noHTTP2
	}
}

func run(cmd *cobra.Command, o *options, target string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.apply(cmd.Flags(), &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := hclog.LevelFromString(cfg.LogLevel)
	if level == hclog.NoLevel {
		return errors.Errorf("invalid log level %q", cfg.LogLevel)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "httpfetch",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	u, err := url.Parse(target)
	if err != nil {
		return errors.Wrap(err, "parse url")
	}
	method := factories.Method(o.method)
	if m, ok := factories.ResolveMethod(strings.ToUpper(o.method)); ok {
		method = m
	}
	if o.data != "" && !cmd.Flags().Changed("request") {
		method = factories.MethodPost
	}
	body, err := readData(o.data)
	if err != nil {
		return err
	}

	f, release, err := buildFactory(cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	req, err := f.CreateRequest(u, method)
	if err != nil {
		return err
	}
	accept, err := mediatype.ParseList(cfg.Accept)
	if err != nil {
		return err
	}
	if len(accept) > 0 {
		req.Header().Set("Accept", mediatype.FormatList(accept))
	}
	for _, h := range o.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return errors.Errorf("invalid header %q, want 'Name: value'", h)
		}
		req.Header().Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if len(body) > 0 {
		w, err := req.Body()
		if err != nil {
			return err
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	resp, err := req.Execute(ctx)
	if err != nil {
		return err
	}
	defer resp.Close()

	if ct := resp.Header().Get("Content-Type"); ct != "" {
		if mt, err := mediatype.Parse(ct); err != nil {
			logger.Debug("unparsable content type", "content_type", ct, "error", err)
		} else if len(accept) > 0 && !acceptable(accept, mt) {
			logger.Warn("response media type not acceptable", "content_type", mt.String())
		}
	}

	out := cmd.OutOrStdout()
	if o.include {
		writeHead(out, resp)
	}
	if _, err := io.Copy(out, resp.Body()); err != nil {
		return errors.Wrap(err, "read body")
	}
	return nil
}

func readData(data string) ([]byte, error) {
	if !strings.HasPrefix(data, "@") {
		return []byte(data), nil
	}
	b, err := os.ReadFile(data[1:])
	return b, errors.Wrap(err, "read data")
}

func acceptable(accept []mediatype.MediaType, mt mediatype.MediaType) bool {
	for _, a := range accept {
		if a.IsCompatibleWith(mt) {
			return true
		}
	}
	return false
}

func writeHead(w io.Writer, resp factories.Response) {
	fmt.Fprintf(w, "%d %s\n", resp.StatusCode(), resp.StatusText())
	keys := make([]string, 0, len(resp.Header()))
	for k := range resp.Header() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range resp.Header()[k] {
			fmt.Fprintf(w, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintln(w)
}

func Execute() {
	if err := NewHTTPFetchCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

package sentry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sentry-itest/lib/htmlutil"
	"sentry-itest/lib/restyutil"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultHost = "http://localhost:9500"

const loginPath = "/login/"

const maxRedirects = 10

// Client owns a single dashboard session. It is not safe for concurrent
// use, create one Client per caller instead.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	authenticated bool
}

type ClientOptions struct {
	// defaults to DefaultHost
	BaseUrl string
	// defaults to 30 seconds
	Timeout   time.Duration
	UserAgent string
	// makes the TLS handshake and headers look like a browser, needed when
	// the dashboard sits behind cloudflare
	BrowserFingerprint bool
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultHost
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	baseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(baseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.BrowserFingerprint {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	client.SetRedirectPolicy(
		onlyFollowGet(),
		resty.FlexibleRedirectPolicy(maxRedirects),
		resty.DomainCheckRedirectPolicy(baseUrl.Hostname()),
	)
	client.SetTimeout(opts.Timeout)

	restyutil.InstrumentClient(client, httpTracer, restyInstrumentOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// the login POST answers with a 302 which must be observed rather than
// followed, page loads follow redirects like a browser would.
func onlyFollowGet() resty.RedirectPolicy {
	return resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		method := via[0].Method
		if method != http.MethodGet && method != http.MethodHead {
			return http.ErrUseLastResponse
		}
		return nil
	})
}

func (c *Client) Authenticated() bool {
	return c.authenticated
}

func (c *Client) get(ctx context.Context, path string) (*resty.Response, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrTransport, path, err)
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, path string, form map[string]string) (*resty.Response, error) {
	req := c.Http.R().SetContext(ctx)
	if form != nil {
		req.SetFormData(form)
	}
	res, err := req.Post(path)
	if err != nil {
		return nil, fmt.Errorf("%w: POST %s: %w", ErrTransport, path, err)
	}
	return res, nil
}

func (c *Client) getDocument(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	doc, err := htmlutil.ParseDocument(res.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: parse html of %s: %w", ErrExtraction, path, err)
	}
	return doc, nil
}

func extractionError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExtraction, path, err)
}

func fail(span trace.Span, err error, message string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, message)
}

// Login authenticates the session. Once it has succeeded every later call
// returns true without touching the network.
func (c *Client) Login(ctx context.Context, username, password string) (bool, error) {
	if c.authenticated {
		return true, nil
	}

	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()
	span.SetAttributes(attribute.String("username", username))

	doc, err := c.getDocument(ctx, loginPath)
	if err != nil {
		fail(span, err, "failed to fetch login page")
		return false, err
	}

	tokenInput, err := htmlutil.First(doc.Selection, "input[name=csrfmiddlewaretoken]")
	if err != nil {
		err = extractionError(loginPath, err)
		fail(span, err, "failed to find csrf token")
		return false, err
	}
	token := tokenInput.AttrOr("value", "")

	res, err := c.post(ctx, loginPath, map[string]string{
		"username":            username,
		"password":            password,
		"csrfmiddlewaretoken": token,
	})
	if err != nil {
		fail(span, err, "failed to make login request")
		return false, err
	}
	if res.StatusCode() != http.StatusFound {
		span.AddEvent("login rejected", trace.WithAttributes(
			attribute.Int("status", res.StatusCode()),
		))
		return false, nil
	}

	doc, err = c.getDocument(ctx, loginPath)
	if err != nil {
		fail(span, err, "failed to fetch page after login")
		return false, err
	}

	header, err := htmlutil.First(doc.Selection, "#header")
	if err != nil {
		err = extractionError(loginPath, err)
		fail(span, err, "failed to find header")
		return false, err
	}
	dropdown, err := htmlutil.Nth(header, "li.dropdown", 1)
	if err != nil {
		err = extractionError(loginPath, err)
		fail(span, err, "failed to find account dropdown")
		return false, err
	}
	contents, err := htmlutil.InnerHtml(dropdown)
	if err != nil {
		err = extractionError(loginPath, err)
		fail(span, err, "failed to render account dropdown")
		return false, err
	}

	c.authenticated = strings.Contains(contents, ">Logout<")
	span.SetAttributes(attribute.Bool("authenticated", c.authenticated))
	return c.authenticated, nil
}

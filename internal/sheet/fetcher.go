package sheet

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	_ "golang.org/x/image/webp"
)

// Fetcher retrieves and decodes one sprite sheet.
// HTTPFetcher implements this interface. Tests can provide mock implementations.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (*Sheet, error)
}

// DefaultTimeout bounds a single fetch when no client is supplied.
const DefaultTimeout = 30 * time.Second

// HTTPFetcher downloads sheets over HTTP GET.
type HTTPFetcher struct {
	// Client is used for requests. Nil uses a client with DefaultTimeout.
	Client *http.Client

	// BaseURL resolves relative references. When empty, relative
	// references are read from the local filesystem.
	BaseURL string
}

var _ Fetcher = (*HTTPFetcher)(nil)

// Fetch downloads ref and decodes it as an image.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (*Sheet, error) {
	target, local, err := f.resolve(ref)
	if err != nil {
		return nil, err
	}

	var body io.ReadCloser
	if local {
		body, err = os.Open(target)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", target, err)
		}
	} else {
		body, err = f.get(ctx, target)
		if err != nil {
			return nil, err
		}
	}
	defer body.Close()

	img, _, err := image.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", target, err)
	}
	return New(ref, img), nil
}

func (f *HTTPFetcher) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", target, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", target, resp.Status)
	}
	return resp.Body, nil
}

func (f *HTTPFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// resolve maps ref to an absolute URL, or to a filesystem path when local is true.
func (f *HTTPFetcher) resolve(ref string) (target string, local bool, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false, fmt.Errorf("parse %q: %w", ref, err)
	}
	switch u.Scheme {
	case "http", "https":
		return ref, false, nil
	case "file":
		return u.Path, true, nil
	case "":
	default:
		return "", false, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, ref)
	}

	if f.BaseURL == "" {
		return ref, true, nil
	}
	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", false, fmt.Errorf("parse base url %q: %w", f.BaseURL, err)
	}
	return base.ResolveReference(u).String(), false, nil
}

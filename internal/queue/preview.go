package queue

import (
    "context"
    "errors"
    "fmt"
    "io"
    "mime"
    "net"
    "net/http"
    "strings"
    "syscall"
    "time"
    "unicode/utf8"

    "golang.org/x/net/html"
)

// Limits applied to fetched pages.
const (
    DefaultFetchTimeout = 10 * time.Second
    DefaultMaxPageBytes = 512 << 10
    maxTitleRunes       = 300
)

// ErrNotHTML is returned for responses that are not HTML documents.
var ErrNotHTML = errors.New("response is not html")

var errBlockedAddress = errors.New("destination address not allowed")

// TitleFetcher downloads a page and extracts its <title>.
type TitleFetcher struct {
    client   *http.Client
    maxBytes int64
}

// NewTitleFetcher builds a fetcher with a per-request timeout. Unless
// allowPrivate is set, connections to loopback, private and link-local
// addresses are refused so user supplied URLs cannot probe the internal
// network.
func NewTitleFetcher(timeout time.Duration, allowPrivate bool) *TitleFetcher {
    if timeout <= 0 {
        timeout = DefaultFetchTimeout
    }
    dialer := &net.Dialer{Timeout: timeout}
    if !allowPrivate {
        dialer.Control = rejectPrivate
    }
    transport := &http.Transport{
        Proxy:                 http.ProxyFromEnvironment,
        DialContext:           dialer.DialContext,
        TLSHandshakeTimeout:   timeout,
        ResponseHeaderTimeout: timeout,
    }
    return &TitleFetcher{
        client: &http.Client{
            Timeout:   timeout,
            Transport: transport,
            CheckRedirect: func(req *http.Request, via []*http.Request) error {
                if len(via) >= 5 {
                    return errors.New("too many redirects")
                }
                return nil
            },
        },
        maxBytes: DefaultMaxPageBytes,
    }
}

func rejectPrivate(_, address string, _ syscall.RawConn) error {
    host, _, err := net.SplitHostPort(address)
    if err != nil {
        return err
    }
    ip := net.ParseIP(host)
    if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
        ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
        return errBlockedAddress
    }
    return nil
}

// FetchTitle returns the trimmed page title, or "" when the page has none.
func (f *TitleFetcher) FetchTitle(ctx context.Context, url string) (string, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return "", err
    }
    req.Header.Set("Accept", "text/html,application/xhtml+xml")
    req.Header.Set("User-Agent", "notestack-preview/1.0")

    resp, err := f.client.Do(req)
    if err != nil {
        return "", err
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
    }
    if ct := resp.Header.Get("Content-Type"); ct != "" {
        mt, _, err := mime.ParseMediaType(ct)
        if err != nil || (mt != "text/html" && mt != "application/xhtml+xml") {
            return "", ErrNotHTML
        }
    }
    return extractTitle(io.LimitReader(resp.Body, f.maxBytes)), nil
}

// extractTitle scans the document for the first <title> element and
// returns its text with whitespace collapsed.
func extractTitle(r io.Reader) string {
    z := html.NewTokenizer(r)
    for {
        switch z.Next() {
        case html.ErrorToken:
            return ""
        case html.StartTagToken:
            name, _ := z.TagName()
            if string(name) != "title" {
                continue
            }
            var b strings.Builder
            for {
                tt := z.Next()
                if tt == html.TextToken {
                    b.Write(z.Text())
                    continue
                }
                break
            }
            return clip(strings.Join(strings.Fields(b.String()), " "), maxTitleRunes)
        case html.EndTagToken:
            // A title only ever appears in the head.
            if name, _ := z.TagName(); string(name) == "head" {
                return ""
            }
        }
    }
}

func clip(s string, n int) string {
    if utf8.RuneCountInString(s) <= n {
        return s
    }
    r := []rune(s)
    return string(r[:n])
}

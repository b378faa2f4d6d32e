package httputil

import (
	"context"
	"net/http"
	"strings"

	"github.com/avmtools/avm/internal/log"
)

// MirrorRule rewrites a URL prefix to another prefix before the request is
// issued. Rules are tried in order; the first whose From is a prefix of the
// requested URL wins. No recursion: rewriting is single-pass.
type MirrorRule struct {
	From string
	To   string
}

// MirrorClient wraps an *http.Client with ordered URL-prefix rewriting.
type MirrorClient struct {
	Client *http.Client
	Rules  []MirrorRule
	Logger log.Logger
}

// NewMirrorClient builds a MirrorClient from a secure client and a mirror rule
// list. A nil logger falls back to the process-global default.
func NewMirrorClient(client *http.Client, rules []MirrorRule, logger log.Logger) *MirrorClient {
	if logger == nil {
		logger = log.Default()
	}
	return &MirrorClient{Client: client, Rules: rules, Logger: logger}
}

// Rewrite applies the first matching mirror rule to url, or returns url
// unchanged if no rule's From is a prefix of it.
func (c *MirrorClient) Rewrite(url string) string {
	for _, rule := range c.Rules {
		if rest, ok := strings.CutPrefix(url, rule.From); ok {
			rewritten := rule.To + rest
			c.Logger.Debug("applying mirror rewrite", "from", url, "to", rewritten)
			return rewritten
		}
	}
	return url
}

// Get issues a GET request against the (possibly rewritten) URL.
func (c *MirrorClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Rewrite(url), nil)
	if err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

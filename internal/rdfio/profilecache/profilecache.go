// Package profilecache caches resolved JSON-LD @context documents
// ("profiles") keyed by context URL, so repeated requests against the
// same client vocabulary don't re-fetch and re-parse it. It
// is a two-tier cache: an in-process LRU in front of a shared Redis tier,
// with at-most-one concurrent build per key so a cache stampede against a
// cold key doesn't fan out into N identical fetches.
package profilecache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/go-redis/redis/v8"
)

// Profile is a resolved JSON-LD context: the term-to-IRI mapping plus any
// nested @vocab default, flattened for direct term lookup.
type Profile struct {
	ContextURL string            `json:"contextUrl"`
	Terms      map[string]string `json:"terms"`
	Vocab      string            `json:"vocab,omitempty"`
}

// Resolve looks up term against the profile's explicit term mapping,
// falling back to vocab-prefixed expansion.
func (p *Profile) Resolve(term string) (string, bool) {
	if iri, ok := p.Terms[term]; ok {
		return iri, true
	}
	if p.Vocab != "" {
		return p.Vocab + term, true
	}
	return "", false
}

// Builder fetches and parses the raw @context document at url into a
// Profile. Callers typically wrap an HTTP GET; kept as an interface so
// tests can supply fixtures without a network.
type Builder interface {
	Build(ctx context.Context, url string) (*Profile, error)
}

// Cache is the two-tier (LRU + Redis) profile cache.
type Cache struct {
	builder Builder
	local   *lru.Cache[string, *Profile]
	redis   *redis.Client
	ttl     time.Duration

	inflightMu sync.Mutex
	inflight   map[string]*buildCall
}

type buildCall struct {
	done    chan struct{}
	profile *Profile
	err     error
}

func New(builder Builder, redisClient *redis.Client, localSize int, ttl time.Duration) (*Cache, error) {
	local, err := lru.New[string, *Profile](localSize)
	if err != nil {
		return nil, fmt.Errorf("profilecache: building local LRU: %w", err)
	}
	return &Cache{
		builder:  builder,
		local:    local,
		redis:    redisClient,
		ttl:      ttl,
		inflight: make(map[string]*buildCall),
	}, nil
}

// Get returns the Profile for contextURL, consulting the local LRU, then
// Redis, then the Builder, in that order. Concurrent Gets for the same
// contextURL share a single in-flight build.
func (c *Cache) Get(ctx context.Context, contextURL string) (*Profile, error) {
	if p, ok := c.local.Get(contextURL); ok {
		return p, nil
	}

	if c.redis != nil {
		if p, ok := c.getFromRedis(ctx, contextURL); ok {
			c.local.Add(contextURL, p)
			return p, nil
		}
	}

	return c.buildOnce(ctx, contextURL)
}

func (c *Cache) getFromRedis(ctx context.Context, contextURL string) (*Profile, bool) {
	raw, err := c.redis.Get(ctx, redisKey(contextURL)).Bytes()
	if err != nil {
		return nil, false
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *Cache) buildOnce(ctx context.Context, contextURL string) (*Profile, error) {
	c.inflightMu.Lock()
	if call, ok := c.inflight[contextURL]; ok {
		c.inflightMu.Unlock()
		<-call.done
		return call.profile, call.err
	}
	call := &buildCall{done: make(chan struct{})}
	c.inflight[contextURL] = call
	c.inflightMu.Unlock()

	call.profile, call.err = c.builder.Build(ctx, contextURL)

	c.inflightMu.Lock()
	delete(c.inflight, contextURL)
	c.inflightMu.Unlock()
	close(call.done)

	if call.err != nil {
		return nil, call.err
	}

	c.local.Add(contextURL, call.profile)
	if c.redis != nil {
		if raw, err := json.Marshal(call.profile); err == nil {
			c.redis.Set(ctx, redisKey(contextURL), raw, c.ttl)
		}
	}
	return call.profile, nil
}

func redisKey(contextURL string) string { return "ldpcore:jsonld-profile:" + contextURL }

// ExtractTerms applies a JSONPath expression over a raw @context document
// to pull out its term mapping, used by Builder implementations that need
// to navigate contexts with nested @context arrays or scoped contexts
// before producing a flat Profile.
func ExtractTerms(rawContext []byte, path string) (map[string]any, error) {
	var doc any
	if err := json.Unmarshal(rawContext, &doc); err != nil {
		return nil, fmt.Errorf("profilecache: parsing context document: %w", err)
	}
	eval, err := jsonpath.New(path)
	if err != nil {
		return nil, fmt.Errorf("profilecache: compiling path %q: %w", path, err)
	}
	result, err := eval(context.Background(), doc)
	if err != nil {
		return nil, fmt.Errorf("profilecache: evaluating %q: %w", path, err)
	}
	terms, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("profilecache: path %q did not select an object", path)
	}
	return terms, nil
}

// evalBoolean is used by Builder implementations that need to decide, from
// a context's scoped metadata, whether a term should be treated as an
// @id-valued term (e.g. "@type": "@id") using a small gval expression
// rather than a hand-rolled switch over every JSON-LD keyword combination.
func evalBoolean(expression string, parameters map[string]any) (bool, error) {
	value, err := gval.Evaluate(expression, parameters)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("profilecache: expression %q did not evaluate to a boolean", expression)
	}
	return b, nil
}

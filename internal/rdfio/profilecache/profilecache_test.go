package profilecache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingBuilder struct {
	calls int32
	delay time.Duration
}

func (b *countingBuilder) Build(ctx context.Context, url string) (*Profile, error) {
	atomic.AddInt32(&b.calls, 1)
	time.Sleep(b.delay)
	return &Profile{ContextURL: url, Terms: map[string]string{"title": "http://purl.org/dc/elements/1.1/title"}}, nil
}

func TestGetCachesLocally(t *testing.T) {
	builder := &countingBuilder{}
	cache, err := New(builder, nil, 16, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if _, err := cache.Get(ctx, "http://example.org/ctx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Get(ctx, "http://example.org/ctx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&builder.calls) != 1 {
		t.Fatalf("expected a single build, got %d", builder.calls)
	}
}

func TestGetDedupsConcurrentBuildsForSameKey(t *testing.T) {
	builder := &countingBuilder{delay: 20 * time.Millisecond}
	cache, err := New(builder, nil, 16, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(ctx, "http://example.org/ctx"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&builder.calls) != 1 {
		t.Fatalf("expected exactly one build for concurrent callers, got %d", builder.calls)
	}
}

func TestProfileResolveFallsBackToVocab(t *testing.T) {
	p := &Profile{Terms: map[string]string{"title": "http://purl.org/dc/elements/1.1/title"}, Vocab: "https://www.w3.org/ns/activitystreams#"}

	if iri, ok := p.Resolve("title"); !ok || iri != "http://purl.org/dc/elements/1.1/title" {
		t.Fatalf("expected explicit term mapping to win, got %q", iri)
	}
	if iri, ok := p.Resolve("Create"); !ok || iri != "https://www.w3.org/ns/activitystreams#Create" {
		t.Fatalf("expected vocab fallback, got %q", iri)
	}
}

func TestExtractTermsNavigatesContextDocument(t *testing.T) {
	raw := []byte(`{"@context": {"title": "http://purl.org/dc/elements/1.1/title"}}`)
	terms, err := ExtractTerms(raw, "$['@context']")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if terms["title"] != "http://purl.org/dc/elements/1.1/title" {
		t.Fatalf("expected title term, got %+v", terms)
	}
}

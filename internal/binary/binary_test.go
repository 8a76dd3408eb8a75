package binary

import (
	"bytes"
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/skolem"
	"github.com/trellis-ldp/ldpcore/internal/store/memory"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

func newTestService() *Service {
	return New(memory.NewBinaryStore(), skolem.New(0, 2), metrics.Noop{})
}

// TestSetContentSHA256Digest is scenario S6.
func TestSetContentSHA256Digest(t *testing.T) {
	svc := newTestService()
	id := "trellis:data/bin/x"
	payload := "This is a file."

	size, digest, err := svc.SetContent(context.Background(), id, bytes.NewReader([]byte(payload)), SHA256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), size)
	}

	want := "c195ea0690238192d2a000c5e35f42469242bab0dc6a03b09dbffc5408a24170"
	if hex.EncodeToString(digest) != want {
		t.Fatalf("expected digest %s, got %s", want, hex.EncodeToString(digest))
	}

	again, err := svc.CalculateDigest(context.Background(), id, SHA256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hex.EncodeToString(again) != want {
		t.Fatalf("expected calculateDigest to reproduce the same digest")
	}
}

func TestContentRangeClippedToLastByte(t *testing.T) {
	svc := newTestService()
	id := "trellis:data/bin/x"
	payload := "0123456789"

	if _, _, err := svc.SetContent(context.Background(), id, bytes.NewReader([]byte(payload)), MD5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := svc.Content(context.Background(), id, 5, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	got := make([]byte, 0)
	buf := make([]byte, 16)
	for {
		n, rerr := r.Read(buf)
		got = append(got, buf[:n]...)
		if rerr != nil {
			break
		}
	}
	if string(got) != "56789" {
		t.Fatalf("expected clipped range %q, got %q", "56789", got)
	}
}

func TestSupportedAlgorithmsListsFourDigests(t *testing.T) {
	svc := newTestService()
	algs := svc.SupportedAlgorithms()
	if len(algs) != 4 {
		t.Fatalf("expected 4 supported algorithms, got %+v", algs)
	}
}

func TestGenerateIdentifierIsUnderInternalDataPrefix(t *testing.T) {
	svc := newTestService()
	id := svc.GenerateIdentifier()
	if !strings.HasPrefix(id, rdf.InternalDataPrefix) || id == rdf.InternalDataPrefix {
		t.Fatalf("expected a generated identifier under %s, got %q", rdf.InternalDataPrefix, id)
	}
}

// Command ldpd wires the resource lifecycle engine into a minimal HTTP
// surface. It is a demonstration host for the core's services, not a full
// LDP protocol binding: request routing, content negotiation, and
// conditional-request handling beyond what's shown here belong to a
// dedicated binding layer built on top of this package's services.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/trellis-ldp/ldpcore/internal/audit"
	"github.com/trellis-ldp/ldpcore/internal/binary"
	"github.com/trellis-ldp/ldpcore/internal/constraint"
	"github.com/trellis-ldp/ldpcore/internal/event"
	"github.com/trellis-ldp/ldpcore/internal/memento"
	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/rdfio"
	"github.com/trellis-ldp/ldpcore/internal/resource"
	"github.com/trellis-ldp/ldpcore/internal/session"
	"github.com/trellis-ldp/ldpcore/internal/skolem"
	"github.com/trellis-ldp/ldpcore/internal/store"
	"github.com/trellis-ldp/ldpcore/internal/store/memory"
	pgstore "github.com/trellis-ldp/ldpcore/internal/store/postgres"
	"github.com/trellis-ldp/ldpcore/internal/webac"
	"github.com/trellis-ldp/ldpcore/pkg/config"
	"github.com/trellis-ldp/ldpcore/pkg/logger"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Service.NamespaceDocumentPath != "" {
		if err := cfg.LoadNamespaceDocument(cfg.Service.NamespaceDocumentPath); err != nil {
			log.Fatalf("load namespace document: %v", err)
		}
	}

	log := logger.New(cfg.Service.Name, cfg.Service.LogLevel, cfg.Service.LogFormat)
	recorder := metrics.NewPrometheus(cfg.Service.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mutableStore, immutableStore, mementoStore, binaryStore, namespaceService, closeStore := openStores(ctx, cfg)
	defer closeStore()

	ids := skolem.New(2, 2)
	validator := constraint.New(cfg.HTTP.BaseIRI)
	auditSvc := audit.New(immutableStore)
	mementoSvc := memento.New(mementoStore, log, recorder)
	eventSvc := event.New(openBus(cfg, log), log, recorder)
	binarySvc := binary.New(binaryStore, ids, recorder)

	resourceSvc := resource.New(mutableStore, immutableStore, validator, auditSvc, mementoSvc, eventSvc, ids, log, recorder)
	authEngine := webac.New(resourceSvc, cfg.Namespace.AdministratorIRIs)
	rdfioSvc := rdfio.NewService(cfg.Namespace.Prefixes)

	sched := cron.New()
	if _, err := sched.AddFunc("@every 1h", func() {
		if err := resourceSvc.Sweep(ctx); err != nil {
			log.WithError(err).Warn("resource sweep failed")
		}
		if err := mementoSvc.Sweep(ctx); err != nil {
			log.WithError(err).Warn("memento sweep failed")
		}
	}); err != nil {
		log.WithError(err).Warn("failed to schedule sweep")
	}
	sched.Start()
	defer sched.Stop()

	h := &handlers{
		resources: resourceSvc,
		binaries:  binarySvc,
		rdfio:     rdfioSvc,
		auth:      authEngine,
		namespace: namespaceService,
		baseIRI:   cfg.HTTP.BaseIRI,
		log:       log,
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(requestLoggingMiddleware(log))

	router.Get("/health", h.health)
	router.Get("/ready", h.ready)
	router.Get("/namespaces", h.getNamespaces)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/resource", func(r chi.Router) {
		r.Get("/*", h.getResource)
		r.Put("/*", h.putResource)
		r.Delete("/*", h.deleteResource)
	})
	router.Route("/binary", func(r chi.Router) {
		r.Get("/*", h.getBinary)
		r.Put("/*", h.putBinary)
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("ldpd listening on " + cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown error")
	}
}

func openStores(ctx context.Context, cfg *config.Config) (
	store.MutableStore, store.ImmutableStore, store.MementoStore, store.BinaryStore, store.NamespaceService, func(),
) {
	switch cfg.Service.StoreBackend {
	case "postgres":
		db, err := pgstore.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.MigrationsPath, cfg.Postgres.MaxOpenConns)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		return pgstore.NewMutableStore(db), pgstore.NewImmutableStore(db), pgstore.NewMementoStore(db),
			pgstore.NewBinaryStore(db), pgstore.NewNamespaceService(db), func() { db.Close() }
	default:
		return memory.NewMutableStore(), memory.NewImmutableStore(), memory.NewMementoStore(),
			memory.NewBinaryStore(), memory.NewNamespaceService(cfg.Namespace.Prefixes), func() {}
	}
}

func openBus(cfg *config.Config, log *logger.Logger) event.Bus {
	switch cfg.Service.EventBus {
	case "websocket":
		return event.NewWebsocketBus(log)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		return event.NewRedisBus(client, "ldpcore.events", log)
	default:
		return event.NewInProcessBus()
	}
}

func requestLoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start).String(),
			}).Info("request")
		})
	}
}

type handlers struct {
	resources *resource.Service
	binaries  *binary.Service
	rdfio     *rdfio.Service
	auth      *webac.Engine
	namespace store.NamespaceService
	baseIRI   string
	log       *logger.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *handlers) getNamespaces(w http.ResponseWriter, r *http.Request) {
	ns, err := h.namespace.GetNamespaces(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ns)
}

func (h *handlers) identifierFor(r *http.Request) string {
	return h.baseIRI + chi.URLParam(r, "*")
}

func (h *handlers) sessionFor(r *http.Request) *rdf.Session {
	agentIRI := r.Header.Get("X-Agent-IRI")
	if agentIRI == "" {
		agentIRI = rdf.AnonymousAgent
	}
	s, err := session.New("urn:ldpd:session:"+strconv.FormatInt(time.Now().UnixNano(), 10), agentIRI, time.Now(), nil)
	if err != nil {
		return rdf.NewSession("urn:ldpd:session:anonymous", agentIRI, time.Now())
	}
	return s
}

func (h *handlers) getResource(w http.ResponseWriter, r *http.Request) {
	identifier := h.identifierFor(r)
	modes, err := h.auth.AccessModes(r.Context(), identifier, h.sessionFor(r))
	if err != nil || !hasMode(modes, webac.Read) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	lookup, err := h.resources.Get(r.Context(), identifier)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if lookup.IsMissing() {
		http.NotFound(w, r)
		return
	}
	if lookup.IsDeleted() {
		http.Error(w, "gone", http.StatusGone)
		return
	}

	body, err := h.rdfio.Serialize(rdfio.Turtle, toTriples(lookup.Resource.Stream()), identifier)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", string(rdfio.Turtle))
	w.Header().Set("ETag", lookup.Resource.Revision)
	_, _ = w.Write(body)
}

func (h *handlers) putResource(w http.ResponseWriter, r *http.Request) {
	identifier := h.identifierFor(r)
	sess := h.sessionFor(r)
	modes, err := h.auth.AccessModes(r.Context(), identifier, sess)
	if err != nil || !hasMode(modes, webac.Write) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	triples, err := h.rdfio.Parse(rdfio.Turtle, body, identifier)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metadata := rdf.Metadata{Identifier: identifier, InteractionModel: rdf.RDFSource, Revision: r.Header.Get("If-Match")}
	updated, err := h.resources.Replace(r.Context(), sess, metadata, toQuads(triples))
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("ETag", updated.Revision)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) deleteResource(w http.ResponseWriter, r *http.Request) {
	identifier := h.identifierFor(r)
	sess := h.sessionFor(r)
	modes, err := h.auth.AccessModes(r.Context(), identifier, sess)
	if err != nil || !hasMode(modes, webac.Write) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.resources.Delete(r.Context(), sess, rdf.Metadata{Identifier: identifier}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getBinary(w http.ResponseWriter, r *http.Request) {
	identifier := h.identifierFor(r)
	handle, err := h.binaries.Get(r.Context(), identifier)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer handle.Close()
	w.Header().Set("Content-Length", strconv.FormatInt(handle.Size(), 10))
	_, _ = io.Copy(w, handle)
}

func (h *handlers) putBinary(w http.ResponseWriter, r *http.Request) {
	identifier := h.identifierFor(r)
	size, digest, err := h.binaries.SetContent(r.Context(), identifier, r.Body, binary.SHA256)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Digest", "sha-256="+hex.EncodeToString(digest))
	w.WriteHeader(http.StatusNoContent)
}

func hasMode(modes map[webac.Mode]struct{}, mode webac.Mode) bool {
	_, ok := modes[mode]
	return ok
}

func toQuads(triples []rdf.Triple) []rdf.Quad {
	out := make([]rdf.Quad, len(triples))
	for i, t := range triples {
		out[i] = rdf.Quad{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
	}
	return out
}

func toTriples(quads []rdf.Quad) []rdf.Triple {
	out := make([]rdf.Triple, len(quads))
	for i, q := range quads {
		out[i] = rdf.Triple{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object}
	}
	return out
}

package memory

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Config holds per-session memory configuration.
type Config struct {
	// WindowSize caps the short-term utterance window.
	// Default: 5.
	WindowSize int

	// RecallTopK is how many semantic recalls feed query composition.
	// Default: 2.
	RecallTopK int

	// Dimensions is the expected embedding size.
	// Default: 384 (all-MiniLM-L6-v2).
	Dimensions int

	// MaxEntries bounds semantic memory growth when the default VectorIndex
	// backend is used; the oldest entry is evicted past the bound.
	// Default: 1000. Zero means unbounded, matching append-only semantics.
	MaxEntries int

	// Keywords overrides the category keyword set that triggers topic
	// changes. Empty means DefaultCategoryKeywords.
	Keywords []string
}

// DefaultConfig returns sensible defaults for the local SDK.
var DefaultConfig = &Config{
	WindowSize: 5,
	RecallTopK: 2,
	Dimensions: 384,
	MaxEntries: 1000,
}

// Session owns the memory state of one logical conversation: the short-term
// window with its topic, and the semantic store. Create one Session per
// conversation; a single shared instance is only appropriate for single-user
// demo mode.
//
// Window and topic mutations are serialized behind a mutex. Embedding runs
// outside the lock, so a slow embedder never blocks other turns from reading
// the window.
type Session struct {
	id       string
	config   *Config
	mu       sync.Mutex
	window   *ShortTermWindow
	semantic *SemanticStore
}

// SessionOption configures a Session.
type SessionOption func(*sessionSetup)

type sessionSetup struct {
	config  *Config
	backend Store
}

// WithConfig overrides DefaultConfig.
func WithConfig(cfg *Config) SessionOption {
	return func(s *sessionSetup) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithStore swaps the semantic backend (e.g. a chromem.Store) for the
// default VectorIndex.
func WithStore(store Store) SessionOption {
	return func(s *sessionSetup) {
		s.backend = store
	}
}

// NewSession creates a conversation-scoped memory context.
func NewSession(embedder Embedder, opts ...SessionOption) *Session {
	setup := &sessionSetup{config: DefaultConfig}
	for _, opt := range opts {
		opt(setup)
	}
	cfg := setup.config

	backend := setup.backend
	if backend == nil {
		var indexOpts []IndexOption
		if cfg.MaxEntries > 0 {
			indexOpts = append(indexOpts, WithMaxEntries(cfg.MaxEntries))
		}
		backend = NewVectorIndex(indexOpts...)
	}

	return &Session{
		id:       uuid.New().String(),
		config:   cfg,
		window:   NewShortTermWindow(cfg.WindowSize, cfg.Keywords),
		semantic: NewSemanticStore(embedder, backend, cfg.Dimensions),
	}
}

// ID returns the session's conversation identifier.
func (s *Session) ID() string {
	return s.id
}

// Remember records one user utterance in both memories: short-term window
// plus topic update, then semantic store. A failed or malformed embedding
// drops the utterance from semantic memory only; it is logged, never raised.
func (s *Session) Remember(ctx context.Context, text string) {
	s.mu.Lock()
	s.window.Add(text)
	s.window.UpdateTopic(text)
	s.mu.Unlock()

	if err := s.semantic.Add(ctx, text); err != nil {
		log.Printf("[MEMORY] Dropped utterance %q: %v", truncateLog(text, 50), err)
	}
}

// Recall returns the stored utterances most similar to text, up to the
// configured RecallTopK. Any embedding or backend failure degrades to an
// empty recall.
func (s *Session) Recall(ctx context.Context, text string) []Recall {
	recalls, err := s.semantic.Search(ctx, text, s.config.RecallTopK)
	if err != nil {
		log.Printf("[MEMORY] Recall failed for %q: %v", truncateLog(text, 50), err)
		return nil
	}
	return recalls
}

// QueryContext merges the durable topic with a new message, updating the
// topic when the message names a category. See ShortTermWindow.QueryContext.
func (s *Session) QueryContext(text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.QueryContext(text)
}

// Topic returns the current topic, empty until the first keyword match.
func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Topic()
}

// History returns a copy of the short-term window, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Texts()
}

// Semantic exposes the semantic store, mainly for inspection in tests and
// demos.
func (s *Session) Semantic() *SemanticStore {
	return s.semantic
}

// Close releases the semantic backend.
func (s *Session) Close() error {
	return s.semantic.Close()
}

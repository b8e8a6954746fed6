package mnemo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/mnemo/internal/corpus"
	"github.com/aretw0/mnemo/internal/runtime"
	"github.com/aretw0/mnemo/pkg/cache"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/ports"
	"github.com/aretw0/mnemo/pkg/request"
	"github.com/google/uuid"
)

// Engine is the high-level entry point for the mnemo library.
// It owns one trained base chain and builds constrained models on demand.
type Engine struct {
	corpus    string
	order     int
	tokenizer ports.Tokenizer
	store     ports.ModelStore
	locker    ports.DistributedLocker
	cache     *cache.Manager
	runtime   *runtime.Engine

	runtimeOpts []runtime.EngineOption
	logger      *slog.Logger
	source      runtime.Source

	mu   sync.RWMutex
	base *domain.BaseModel
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithOrder sets the markov order (default 1).
func WithOrder(order int) Option {
	return func(e *Engine) {
		e.order = order
	}
}

// WithTokenizer replaces the default plain-text tokenizer.
func WithTokenizer(t ports.Tokenizer) Option {
	return func(e *Engine) {
		e.tokenizer = t
	}
}

// WithStore caches trained models in store.
func WithStore(store ports.ModelStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker serializes training across processes sharing a store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithPolicy sets the filter policy applied to constrained layers.
func WithPolicy(p runtime.Policy) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithPolicy(p))
	}
}

// WithBuildHooks registers observability hooks.
func WithBuildHooks(hooks domain.BuildHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithBuildHooks(hooks))
	}
}

// WithDiagnostics logs per-stage build details at debug level.
func WithDiagnostics(enabled bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithDiagnostics(enabled))
	}
}

// WithSeed makes sampling reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.source = runtime.NewSeededSource(seed)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine for the corpus at corpusPath. The corpus is not read
// until Load is called. corpusPath may be empty when the engine is trained with Train.
func New(corpusPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		corpus: corpusPath,
		order:  domain.DefaultOrder,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.order < 1 {
		return nil, fmt.Errorf("order %d: %w", eng.order, domain.ErrInvalidOrder)
	}
	if eng.tokenizer == nil {
		eng.tokenizer = corpus.New()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.source == nil {
		eng.source = runtime.DefaultSource()
	}
	if eng.corpus != "" {
		eng.logger = eng.logger.With("corpus", filepath.Base(eng.corpus))
	}

	cacheOpts := []cache.Option{cache.WithLogger(eng.logger)}
	if eng.locker != nil {
		cacheOpts = append(cacheOpts, cache.WithLocker(eng.locker))
	}
	eng.cache = cache.NewManager(eng.store, cacheOpts...)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithSource(eng.source),
	}
	eng.runtime = runtime.NewEngine(append(runtimeOpts, eng.runtimeOpts...)...)

	return eng, nil
}

// Key is the cache key of the engine's base model.
func (e *Engine) Key() string {
	return domain.ModelKey(e.corpus, e.order)
}

// Order returns the markov order.
func (e *Engine) Order() int { return e.order }

// Cache returns the model cache manager.
func (e *Engine) Cache() *cache.Manager { return e.cache }

// Load makes the base model resident, reading it from the store or training it from
// the corpus file.
func (e *Engine) Load(ctx context.Context) error {
	if e.corpus == "" {
		return fmt.Errorf("load: no corpus path: %w", domain.ErrEmptyCorpus)
	}
	base, err := e.cache.LoadOrTrain(ctx, e.Key(), e.trainFile)
	if err != nil {
		return err
	}
	e.setBase(base)
	return nil
}

func (e *Engine) trainFile(ctx context.Context) (*domain.BaseModel, error) {
	f, err := os.Open(e.corpus)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return e.train(ctx, f)
}

// Train replaces the base model with one trained from r, bypassing the cache.
func (e *Engine) Train(ctx context.Context, r io.Reader) error {
	base, err := e.train(ctx, r)
	if err != nil {
		return err
	}
	e.setBase(base)
	return nil
}

func (e *Engine) train(ctx context.Context, r io.Reader) (*domain.BaseModel, error) {
	seqs, err := e.tokenizer.Tokenize(ctx, r, e.order)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	return runtime.Train(e.corpus, e.order, seqs)
}

func (e *Engine) setBase(base *domain.BaseModel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.base = base
}

// Base returns the resident base model, or nil before Load or Train.
func (e *Engine) Base() *domain.BaseModel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.base
}

func (e *Engine) current() *domain.BaseModel {
	if base := e.Base(); base != nil {
		return base
	}
	return &domain.BaseModel{Corpus: e.corpus, Order: e.order}
}

// Build constructs the constrained model for c. Before a base model is loaded the
// result is untrained.
func (e *Engine) Build(ctx context.Context, c domain.Constraint) (ports.ConstrainedModel, error) {
	return e.runtime.Build(ctx, e.current(), c)
}

// Sentence is one generated mnemonic.
type Sentence struct {
	Tokens      []string `json:"tokens"`
	Text        string   `json:"text"`
	Probability float64  `json:"probability"`
}

// Result is the outcome of a generation request.
type Result struct {
	ID         string     `json:"id"`
	Constraint string     `json:"constraint"`
	Sentences  []Sentence `json:"sentences"`
	// Removed maps a removal cause to one group per sentence, each group holding
	// one sampled pruned token per constrained position.
	Removed    map[string][][]string `json:"removed,omitempty"`
	LayerSizes []int                 `json:"layer_sizes"`
	Feasible   bool                  `json:"feasible"`
}

// Generate builds the constrained model for c and draws n sentences from it.
//
// When the model is untrained or the constraint infeasible, the returned Result
// still carries the layer sizes alongside the error.
func (e *Engine) Generate(ctx context.Context, c domain.Constraint, n int) (*Result, error) {
	if n < 1 {
		n = request.DefaultCount
	}
	m, err := e.Build(ctx, c)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:         uuid.NewString(),
		Constraint: c.String(),
		LayerSizes: m.LayerSizes(),
		Feasible:   m.Feasible(),
	}

	seqs, err := m.GenerateN(n)
	if err != nil {
		return res, err
	}

	res.Sentences = make([]Sentence, len(seqs))
	res.Removed = make(map[string][][]string, len(domain.Causes))
	for i, seq := range seqs {
		res.Sentences[i] = newSentence(seq, m.Score(seq))
		for _, cause := range domain.Causes {
			group := make([]string, m.Positions())
			for pos := range group {
				group[pos] = string(m.SampleRemoved(cause, pos))
			}
			res.Removed[cause.String()] = append(res.Removed[cause.String()], group)
		}
	}

	e.logger.DebugContext(ctx, "generated",
		"id", res.ID,
		"constraint", res.Constraint,
		"sentences", len(res.Sentences),
	)
	return res, nil
}

// Babble draws an unconstrained sentence of at most length tokens from the base chain.
func (e *Engine) Babble(ctx context.Context, length int) (*Sentence, error) {
	u := runtime.NewUnconstrained(e.current(), e.source)
	seq, err := u.Generate(length)
	if err != nil {
		return nil, err
	}
	s := newSentence(seq, u.Score(seq))
	return &s, nil
}

func newSentence(seq []domain.Token, p float64) Sentence {
	toks := make([]string, len(seq))
	for i, t := range seq {
		toks[i] = string(t)
	}
	return Sentence{
		Tokens:      toks,
		Text:        strings.Join(domain.Sentence(seq), " "),
		Probability: p,
	}
}

// Wire converts r into the socket reply layout.
func (r *Result) Wire() request.Reply {
	reply := request.Reply{
		ByConstraint:     r.Removed[domain.CauseConstraint.String()],
		ByArcConsistency: r.Removed[domain.CauseArcConsistency.String()],
	}
	for _, s := range r.Sentences {
		reply.Sentences = append(reply.Sentences, s.Text)
	}
	return reply
}

package resolvermodule

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/velora/medialog/internal/config"
	"github.com/velora/medialog/internal/database"
	"github.com/velora/medialog/internal/events"
)

// Hand-tuned matching thresholds. They came over from years of watching
// real resolutions; override them through ResolverConfig rather than
// editing here.
const (
	// DefaultMinAcceptScore is the floor below which the best live
	// search candidate is rejected outright.
	DefaultMinAcceptScore = 0.3

	// DefaultConfirmFloor is the confidence below which a fresh,
	// unverified resolution asks the user to confirm.
	DefaultConfirmFloor = 0.9
)

// Request describes one resolution call.
type Request struct {
	Reference Reference `json:"reference"`
	Provider  string    `json:"provider"`  // target provider; empty means primary for Category
	Category  string    `json:"category"`  // media category for the ranking table
	Title     string    `json:"title"`     // search title
	TypeHint  string    `json:"type_hint"` // optional declared media type
	FetchInfo bool      `json:"fetch_info"`
	Fallback  bool      `json:"fallback"` // cascade across the provider ranking on failure
}

// Resolution is the outcome of a successful resolve.
type Resolution struct {
	Reference      Reference         `json:"reference"`
	Provider       string            `json:"provider"`
	NativeID       string            `json:"native_id"`
	Title          string            `json:"title"`
	Confidence     float64           `json:"confidence"`
	Verified       bool              `json:"verified"`
	UsedFallback   bool              `json:"used_fallback"`
	TriedProviders []string          `json:"tried_providers"`
	NeedsConfirm   bool              `json:"needs_confirmation"`
	Alternatives   []ScoredCandidate `json:"alternatives,omitempty"`
	Info           *MediaInfo        `json:"info,omitempty"`
}

// Resolver translates canonical references into provider-native ids.
// Per request it walks a fixed precedence: direct pass-through, durable
// mapping, ephemeral cache, live search — optionally cascading across
// the provider fallback chain.
type Resolver struct {
	store    MappingStore
	cache    *ResolutionCache
	searcher Searcher
	info     InfoFetcher
	rankings *ProviderRankings
	bus      events.EventBus
	logger   hclog.Logger

	minAcceptScore float64
	confirmFloor   float64

	saves  chan *database.ProviderMapping
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewResolver wires a resolver from its collaborators. The event bus
// and info fetcher may be nil; the corresponding features are skipped.
func NewResolver(cfg config.ResolverConfig, store MappingStore, cache *ResolutionCache, searcher Searcher, info InfoFetcher, rankings *ProviderRankings, bus events.EventBus, logger hclog.Logger) *Resolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	minAccept := cfg.MinAcceptScore
	if minAccept <= 0 {
		minAccept = DefaultMinAcceptScore
	}
	confirm := cfg.ConfirmFloor
	if confirm <= 0 {
		confirm = DefaultConfirmFloor
	}
	queueSize := cfg.SaveQueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	r := &Resolver{
		store:          store,
		cache:          cache,
		searcher:       searcher,
		info:           info,
		rankings:       rankings,
		bus:            bus,
		logger:         logger.Named("resolver"),
		minAcceptScore: minAccept,
		confirmFloor:   confirm,
		saves:          make(chan *database.ProviderMapping, queueSize),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
	go r.saveWorker()
	return r
}

// Close stops the background mapping writer, draining queued saves.
func (r *Resolver) Close() {
	close(r.stopCh)
	<-r.doneCh
}

// Resolve resolves a reference to a provider-native id. When the
// request allows fallback, each provider in the category's ranking is
// tried in order until one yields an acceptable match.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	if req.Reference.Source == "" || req.Reference.ID == "" {
		return nil, ErrInvalidReference
	}

	chain, err := r.providerChain(req)
	if err != nil {
		return nil, err
	}

	var tried []string
	for _, provider := range chain {
		tried = append(tried, provider)

		res, err := r.resolveAgainst(ctx, req, provider)
		if err != nil {
			if recoverable(err) && req.Fallback {
				r.logger.Debug("provider attempt failed, falling back",
					"reference", req.Reference.String(), "provider", provider, "error", err)
				continue
			}
			if recoverable(err) {
				r.publishFailure(req, tried)
			}
			return nil, err
		}

		res.TriedProviders = tried
		res.UsedFallback = len(tried) > 1
		res.NeedsConfirm = !res.Verified && res.Confidence < r.confirmFloor

		if req.FetchInfo && r.info != nil {
			info, err := r.info.GetInfo(ctx, provider, res.NativeID, req.TypeHint)
			if err != nil {
				// Info is best-effort; the resolution stands without it.
				r.logger.Warn("info fetch failed", "provider", provider, "native_id", res.NativeID, "error", err)
			} else {
				res.Info = info
			}
		}

		r.publishSuccess(res)
		return res, nil
	}

	r.publishFailure(req, tried)
	return nil, &ExhaustedError{Reference: req.Reference, Tried: tried}
}

// providerChain determines which providers to try, in order.
func (r *Resolver) providerChain(req Request) ([]string, error) {
	if !req.Fallback {
		provider := req.Provider
		if provider == "" {
			primary, err := r.rankings.PrimaryProvider(req.Category)
			if err != nil {
				return nil, err
			}
			provider = primary
		}
		return []string{provider}, nil
	}

	chain := r.rankings.FallbackChain(req.Category, req.Provider)
	if req.Provider != "" && (len(chain) == 0 || chain[0] != req.Provider) {
		// Target provider absent from the table (or flagged broken):
		// still try it first, then the configured chain.
		chain = append([]string{req.Provider}, chain...)
	}
	if len(chain) == 0 {
		return nil, &ExhaustedError{Reference: req.Reference}
	}
	return chain, nil
}

// resolveAgainst runs the five-step precedence for a single provider.
// The order is strict: a durable verified mapping must never be
// bypassed in favor of a fresh lower-confidence search.
func (r *Resolver) resolveAgainst(ctx context.Context, req Request, provider string) (*Resolution, error) {
	ref := req.Reference

	// Step 1: the reference already names this provider.
	if ref.Source == provider {
		return &Resolution{
			Reference:  ref,
			Provider:   provider,
			NativeID:   ref.ID,
			Title:      req.Title,
			Confidence: 1.0,
			Verified:   true,
		}, nil
	}

	// Step 2: durable mapping, which may hold a human-verified answer.
	mapping, err := r.store.Get(ctx, ref, provider)
	if err != nil {
		r.logger.Warn("mapping lookup failed, continuing without it",
			"reference", ref.String(), "provider", provider, "error", err)
	}
	if mapping != nil {
		r.cache.Put(ref, provider, mapping.ProviderNativeID, mapping.ProviderTitle)
		return &Resolution{
			Reference:  ref,
			Provider:   provider,
			NativeID:   mapping.ProviderNativeID,
			Title:      mapping.ProviderTitle,
			Confidence: mapping.Confidence,
			Verified:   mapping.Verified(),
		}, nil
	}

	// Step 3: ephemeral cache from earlier in this session.
	if nativeID, title, ok := r.cache.Get(ref, provider); ok {
		return &Resolution{
			Reference:  ref,
			Provider:   provider,
			NativeID:   nativeID,
			Title:      title,
			Confidence: 1.0,
			Verified:   false,
		}, nil
	}

	// Step 4: live search.
	candidates, err := r.searcher.Search(ctx, provider, req.Title)
	if err != nil {
		if _, ok := err.(*SearchError); !ok {
			err = &SearchError{Provider: provider, Err: err}
		}
		return nil, err
	}

	scored := scoreCandidates(candidates, req.Title, req.TypeHint)
	if len(scored) == 0 || scored[0].Score < r.minAcceptScore {
		return nil, ErrNoAcceptableMatch
	}
	best := scored[0]

	// Step 5: accept. Cache immediately, persist in the background.
	r.cache.Put(ref, provider, best.ID, best.Title)
	r.enqueueSave(&database.ProviderMapping{
		Reference:        ref.String(),
		Provider:         provider,
		ProviderNativeID: best.ID,
		ProviderTitle:    best.Title,
		Confidence:       best.Score,
	})

	return &Resolution{
		Reference:    ref,
		Provider:     provider,
		NativeID:     best.ID,
		Title:        best.Title,
		Confidence:   best.Score,
		Verified:     false,
		Alternatives: scored[1:],
	}, nil
}

// Confirm records a human-verified mapping for a reference. Unlike the
// auto-detected write this one is synchronous: the user is waiting on
// the confirmation and the verified flag must not be lost.
func (r *Resolver) Confirm(ctx context.Context, ref Reference, provider, nativeID, title, userID string) error {
	mapping := &database.ProviderMapping{
		Reference:        ref.String(),
		Provider:         provider,
		ProviderNativeID: nativeID,
		ProviderTitle:    title,
		Confidence:       1.0,
		VerifiedBy:       &userID,
	}
	if err := r.store.Put(ctx, mapping); err != nil {
		return err
	}
	r.cache.Put(ref, provider, nativeID, title)

	if r.bus != nil {
		r.bus.Publish(events.Event{
			Type:    events.EventMappingVerified,
			Source:  "system.resolver",
			Title:   "Mapping verified",
			Message: title,
			Data: map[string]interface{}{
				"reference": ref.String(),
				"provider":  provider,
				"native_id": nativeID,
				"user_id":   userID,
			},
		})
	}
	return nil
}

// enqueueSave hands an auto-detected mapping to the background writer.
// The caller's result is already usable, so a full queue only costs us
// the cached mapping, not the resolution.
func (r *Resolver) enqueueSave(mapping *database.ProviderMapping) {
	select {
	case r.saves <- mapping:
	default:
		r.logger.Warn("mapping save queue full, dropping auto mapping",
			"reference", mapping.Reference, "provider", mapping.Provider)
	}
}

// saveWorker persists auto-detected mappings off the request path.
// Failures are logged and swallowed: the resolution that produced the
// mapping has already been returned.
func (r *Resolver) saveWorker() {
	defer close(r.doneCh)

	persist := func(mapping *database.ProviderMapping) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := r.store.Put(ctx, mapping); err != nil {
			r.logger.Error("failed to persist auto mapping",
				"reference", mapping.Reference, "provider", mapping.Provider, "error", err)
			return
		}
		if r.bus != nil {
			r.bus.Publish(events.Event{
				Type:   events.EventMappingSaved,
				Source: "system.resolver",
				Title:  "Mapping saved",
				Data: map[string]interface{}{
					"reference":  mapping.Reference,
					"provider":   mapping.Provider,
					"confidence": mapping.Confidence,
				},
			})
		}
	}

	for {
		select {
		case mapping := <-r.saves:
			persist(mapping)
		case <-r.stopCh:
			for {
				select {
				case mapping := <-r.saves:
					persist(mapping)
				default:
					return
				}
			}
		}
	}
}

func (r *Resolver) publishSuccess(res *Resolution) {
	r.logger.Info("resolved reference",
		"reference", res.Reference.String(), "provider", res.Provider,
		"native_id", res.NativeID, "confidence", res.Confidence,
		"verified", res.Verified, "used_fallback", res.UsedFallback)

	if r.bus == nil {
		return
	}
	r.bus.Publish(events.Event{
		Type:    events.EventResolutionCompleted,
		Source:  "system.resolver",
		Title:   "Resolution completed",
		Message: res.Title,
		Data: map[string]interface{}{
			"reference":     res.Reference.String(),
			"provider":      res.Provider,
			"confidence":    res.Confidence,
			"used_fallback": res.UsedFallback,
		},
	})
}

func (r *Resolver) publishFailure(req Request, tried []string) {
	r.logger.Warn("resolution failed",
		"reference", req.Reference.String(), "title", req.Title, "tried", tried)

	if r.bus == nil {
		return
	}
	r.bus.Publish(events.Event{
		Type:    events.EventResolutionFailed,
		Source:  "system.resolver",
		Title:   "Resolution failed",
		Message: req.Title,
		Data: map[string]interface{}{
			"reference": req.Reference.String(),
			"tried":     tried,
		},
	})
}

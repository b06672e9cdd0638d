package mapper

import (
	"reflect"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/rowbind/rowbind/pkg/config"
	"github.com/rowbind/rowbind/pkg/logger"
	"github.com/rowbind/rowbind/pkg/rowbinderrors"
	stringpool "github.com/rowbind/rowbind/pkg/strings"
)

// planEntry binds one result column to one target property through a
// converter.
type planEntry struct {
	columnIndex int // 1-indexed position in the result set
	converter   Converter
	descriptor  PropertyDescriptor
}

// MappingPlan is the resolved, immutable association between result columns
// and target-type properties plus their value converters. A plan is built
// once per distinct (type, prefix, column signature) shape and shared across
// goroutines read-only.
type MappingPlan struct {
	targetType  reflect.Type
	entries     []planEntry
	columnCount int
}

// TargetType returns the struct type this plan materializes.
func (p *MappingPlan) TargetType() reflect.Type {
	return p.targetType
}

// Len returns the number of column-to-property bindings.
func (p *MappingPlan) Len() int {
	return len(p.entries)
}

// Columns returns the 1-indexed result-set positions consumed by the plan,
// in column order.
func (p *MappingPlan) Columns() []int {
	cols := make([]int, len(p.entries))
	for i, e := range p.entries {
		cols[i] = e.columnIndex
	}
	return cols
}

// Properties returns the bound property names in column order.
func (p *MappingPlan) Properties() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.descriptor.Name
	}
	return names
}

// planKey identifies a cached plan. The column signature is collapsed to an
// xxhash fingerprint so the key stays comparable and small.
type planKey struct {
	targetType reflect.Type
	prefix     string
	signature  uint64
}

// signatureFingerprint hashes the ordered column labels. Labels are length
// delimited so ("ab","c") and ("a","bc") fingerprint differently.
func signatureFingerprint(labels []string) uint64 {
	digest := xxhash.New()
	var sep [1]byte
	for _, label := range labels {
		_, _ = digest.WriteString(label)
		sep[0] = byte(len(label))
		_, _ = digest.Write(sep[:])
	}
	return digest.Sum64()
}

// Resolver resolves and caches mapping plans. Safe for concurrent use: the
// plan cache tolerates concurrent first-access races with idempotent
// last-write semantics and never exposes a partially built plan.
type Resolver struct {
	cfg      *config.MappingConfig
	registry *Registry
	plans    sync.Map // planKey -> *MappingPlan
	logger   *zap.Logger
}

// NewResolver creates a plan resolver bound to a configuration and converter
// registry.
func NewResolver(cfg *config.MappingConfig, registry *Registry) *Resolver {
	return &Resolver{
		cfg:      cfg,
		registry: registry,
		logger:   logger.Get().With(zap.String("component", "plan_resolver")),
	}
}

// Resolve returns the mapping plan for a target type against an ordered
// column-label list, building and caching it on first access. Resolution
// failures are returned to the caller and never cached.
func (r *Resolver) Resolve(t reflect.Type, columnLabels []string) (*MappingPlan, error) {
	catalog, err := Introspect(t)
	if err != nil {
		return nil, err
	}

	key := planKey{
		targetType: catalog.TargetType(),
		prefix:     r.cfg.Prefix,
		signature:  signatureFingerprint(columnLabels),
	}

	if cached, ok := r.plans.Load(key); ok {
		planCacheHits.Inc()
		return cached.(*MappingPlan), nil
	}
	planCacheMisses.Inc()

	start := time.Now()
	plan, err := r.resolve(catalog, columnLabels)
	resolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		plansResolved.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	plansResolved.WithLabelValues(outcomeSuccess).Inc()

	// Concurrent resolvers may race here; the plan is deterministic for a
	// given key, so last-write is idempotent.
	r.plans.Store(key, plan)

	r.logger.Debug("mapping plan resolved",
		zap.String("target_type", catalog.TargetType().String()),
		zap.Int("columns", len(columnLabels)),
		zap.Int("matched", plan.Len()))

	return plan, nil
}

// resolve builds a plan without touching the cache.
func (r *Resolver) resolve(catalog *Catalog, columnLabels []string) (*MappingPlan, error) {
	prefix := r.cfg.Prefix
	rules := r.cfg.Naming

	entries := make([]planEntry, 0, len(columnLabels))
	bound := make(map[int]bool, len(columnLabels)) // descriptor index -> already consumed

	for i, label := range columnLabels {
		columnIndex := i + 1
		name := label

		if prefix != "" {
			// Prefix filtering: columns without the prefix are skipped, not
			// errors. The label must extend past the prefix to survive.
			if len(name) > len(prefix) && stringpool.HasPrefixFold(name, prefix) {
				name = name[len(prefix):]
			} else {
				continue
			}
		}

		descriptor, ok := catalog.DescriptorForColumn(name, rules)
		if !ok {
			continue
		}
		if bound[descriptor.Index] {
			// First match wins; a later column matching an already-bound
			// property is skipped rather than rebinding it.
			continue
		}
		bound[descriptor.Index] = true

		converter, ok := r.registry.FindConverter(descriptor.Type)
		if !ok {
			converter = Passthrough()
		}

		entries = append(entries, planEntry{
			columnIndex: columnIndex,
			converter:   converter,
			descriptor:  descriptor,
		})
	}

	if len(entries) == 0 && len(columnLabels) > 0 {
		return nil, rowbinderrors.Newf(rowbinderrors.ErrorTypeNoMatchingColumns,
			"mapping type %s didn't find any matching columns in result set", catalog.TargetType().String()).
			WithDetail("columns", len(columnLabels))
	}

	if r.cfg.IsStrictMatching() && len(entries) != len(columnLabels) {
		return nil, rowbinderrors.Newf(rowbinderrors.ErrorTypeIncompleteMapping,
			"mapping type %s only matched properties for %d of %d columns",
			catalog.TargetType().String(), len(entries), len(columnLabels)).
			WithDetail("matched", len(entries)).
			WithDetail("columns", len(columnLabels))
	}

	return &MappingPlan{
		targetType:  catalog.TargetType(),
		entries:     entries,
		columnCount: len(columnLabels),
	}, nil
}

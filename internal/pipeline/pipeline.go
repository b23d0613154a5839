// Package pipeline turns a category's source files into its canonical
// record set: load, resolve identities, classify coordinates and assign
// region fallbacks.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/poi-sync/internal/diagnostics"
	"github.com/sells-group/poi-sync/internal/geo"
	"github.com/sells-group/poi-sync/internal/identity"
	"github.com/sells-group/poi-sync/internal/loader"
	"github.com/sells-group/poi-sync/internal/model"
)

// SkippedFile is a source file the loader could not use.
type SkippedFile struct {
	File  string
	Error error
}

// Result is the canonical set of one category plus its side products.
type Result struct {
	Records     []model.CanonicalRecord
	Diagnostics *diagnostics.Reporter
	Duplicates  []identity.Duplicate
	Skipped     []SkippedFile
	Fallbacks   int
}

// Pipeline builds canonical record sets.
type Pipeline struct {
	key    identity.KeyFunc
	bounds *geo.Bounds
	engine *geo.Engine
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithKeyFunc sets the identity key function. Default: identity.ExactKey.
func WithKeyFunc(k identity.KeyFunc) Option {
	return func(p *Pipeline) { p.key = k }
}

// WithBounds sets the plausible area for geocoded coordinates.
func WithBounds(b *geo.Bounds) Option {
	return func(p *Pipeline) { p.bounds = b }
}

// WithEngine sets the region fallback engine. Default: geo.DefaultEngine().
func WithEngine(e *geo.Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{key: identity.ExactKey}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		p.engine = geo.DefaultEngine()
	}
	return p
}

// Build loads files in order and returns the canonical set for category.
// Earlier files take precedence over later ones.
func (p *Pipeline) Build(ctx context.Context, category string, files []string) *Result {
	var skipped []SkippedFile
	sources := loader.LoadAll(ctx, files, loader.WithSkipHandler(func(file string, err error) {
		skipped = append(skipped, SkippedFile{File: file, Error: err})
	}))

	res := p.BuildFrom(category, sources)
	res.Skipped = skipped
	return res
}

// BuildFrom resolves already-loaded sources into the canonical set.
func (p *Pipeline) BuildFrom(category string, sources []model.SourceBatch) *Result {
	log := zap.L().With(zap.String("component", "pipeline"), zap.String("category", category))

	reporter := diagnostics.NewReporter(p.key)
	classifier := geo.NewClassifier(p.bounds, reporter)

	kept, dups := identity.NewResolver(p.key).Resolve(sources)

	res := &Result{
		Records:     make([]model.CanonicalRecord, 0, len(kept)),
		Diagnostics: reporter,
		Duplicates:  dups,
	}

	for _, k := range kept {
		e := k.Entry
		rec := model.CanonicalRecord{
			Key:      k.Key,
			Name:     e.Name,
			Address:  e.Address,
			Phone:    e.Phone,
			Email:    e.Email,
			Category: category,
			Source:   e.Source,
		}

		// Classify first: the reporter must see the entry as it was
		// before any fallback coordinate is substituted.
		if class, _ := classifier.Classify(e); class == geo.ClassGeocoded {
			rec.Latitude = *e.Latitude
			rec.Longitude = *e.Longitude
			rec.CoordinateSource = model.SourceGeocoded
		} else {
			m := p.engine.Resolve(e.Address)
			rec.Latitude = m.Region.Latitude
			rec.Longitude = m.Region.Longitude
			rec.CoordinateSource = model.SourceFallback
			rec.Region = m.Region.Name
			res.Fallbacks++
		}

		res.Records = append(res.Records, rec)
	}

	log.Info("canonical set built",
		zap.Int("sources", len(sources)),
		zap.Int("records", len(res.Records)),
		zap.Int("duplicates", len(dups)),
		zap.Int("fallbacks", res.Fallbacks),
		zap.Int("diagnostics", reporter.Len()),
	)
	return res
}

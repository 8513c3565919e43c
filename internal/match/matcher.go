package match

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// MatchBuilds matches gear against every profile of every build and returns
// the builds ranked by best profile percentage. Slots are looked up by exact key.
func MatchBuilds(gear types.Gear, builds []types.Build) []BuildMatch {
	results := make([]BuildMatch, len(builds))
	for i, b := range builds {
		results[i] = MatchBuild(b, DirectResolver(gear), scoring.Default)
	}
	SortMatches(results)
	return results
}

// MatchBuild runs the profile matcher once per profile in the build's order and
// picks the highest percentage as best. On ties the earlier profile wins.
func MatchBuild(b types.Build, resolver Resolver, scorer scoring.Scorer) BuildMatch {
	bm := BuildMatch{
		BuildID:   b.ID,
		BuildName: b.Name,
		Class:     b.Class,
		BuildTier: b.Tier,
		SourceURL: b.SourceURL,
		Profiles:  []ProfileMatch{},
	}

	for _, name := range b.ProfileOrder {
		profile, ok := b.Profiles[name]
		if !ok {
			continue
		}
		pm := MatchProfile(name, profile, resolver, scorer)
		bm.Profiles = append(bm.Profiles, pm)

		if len(bm.Profiles) == 1 || pm.Percentage > bm.BestPercentage {
			bm.BestProfile = pm.Profile
			bm.BestPercentage = pm.Percentage
		}
	}

	return bm
}

// SortMatches orders by best percentage descending, then build name, then build id.
func SortMatches(matches []BuildMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.BestPercentage != b.BestPercentage {
			return a.BestPercentage > b.BestPercentage
		}
		if a.BuildName != b.BuildName {
			return a.BuildName < b.BuildName
		}
		return a.BuildID < b.BuildID
	})
}

// MatcherConfig holds configuration for a Matcher.
type MatcherConfig struct {
	Workers int            // builds matched concurrently; values below 2 match sequentially
	Scorer  scoring.Scorer // defaults to scoring.Default
	Logger  *slog.Logger   // defaults to a discarding logger
}

// Matcher is the configurable form of MatchBuilds.
type Matcher struct {
	workers int
	scorer  scoring.Scorer
	logger  *slog.Logger
}

// NewMatcher creates a new Matcher.
func NewMatcher(cfg MatcherConfig) *Matcher {
	m := &Matcher{
		workers: cfg.Workers,
		scorer:  cfg.Scorer,
		logger:  cfg.Logger,
	}
	if m.scorer == nil {
		m.scorer = scoring.Default
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m
}

// Match ranks builds for the gear exposed by resolver. The result is the same
// whatever the worker count. It fails only when ctx is cancelled.
func (m *Matcher) Match(ctx context.Context, resolver Resolver, builds []types.Build) ([]BuildMatch, error) {
	results := make([]BuildMatch, len(builds))

	if m.workers < 2 {
		for i, b := range builds {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = m.matchOne(b, resolver)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.workers)
		for i, b := range builds {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = m.matchOne(b, resolver)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	SortMatches(results)
	return results, nil
}

func (m *Matcher) matchOne(b types.Build, resolver Resolver) BuildMatch {
	bm := MatchBuild(b, resolver, m.scorer)
	m.logger.Debug("Matched build",
		slog.String("build", b.ID),
		slog.Int("profiles", len(bm.Profiles)),
		slog.String("best_profile", bm.BestProfile),
		slog.Float64("best_percentage", bm.BestPercentage),
	)
	return bm
}

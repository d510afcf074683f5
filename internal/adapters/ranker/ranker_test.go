package ranker

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-curator/internal/domain"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestRanker() *Ranker {
	r := New(DefaultMaxAgeHours)
	r.Now = func() time.Time { return fixedNow }
	return r
}

func TestRelevanceScore(t *testing.T) {
	item := domain.ContentItem{
		Title:   "Scaling React apps with TypeScript",
		Content: "A frontend engineer's notes on bundle size.",
		Topics:  []string{"Web Performance"},
	}
	cases := []struct {
		name    string
		profile domain.UserProfile
		want    float64
	}{
		{"empty profile", domain.UserProfile{}, 0},
		{"role only", domain.UserProfile{ProfessionalRole: "Frontend Engineer"}, 10},
		{"interest in title", domain.UserProfile{Interests: []string{"React"}}, 15},
		{"interest in topics", domain.UserProfile{Interests: []string{"performance"}}, 15},
		{"duplicate interests counted once", domain.UserProfile{Interests: []string{"react", "REACT", " react "}}, 15},
		{"tech stack", domain.UserProfile{TechStack: []string{"typescript", "rust"}}, 10},
		{"short role words ignored", domain.UserProfile{ProfessionalRole: "QA"}, 0},
		{"combined", domain.UserProfile{
			Interests:        []string{"react", "performance"},
			TechStack:        []string{"typescript"},
			ProfessionalRole: "engineer",
		}, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, RelevanceScore(item, tc.profile), 1e-9)
		})
	}
}

func TestRelevanceScoreClamped(t *testing.T) {
	var interests []string
	for i := 0; i < 20; i++ {
		interests = append(interests, fmt.Sprintf("topic%d", i))
	}
	item := domain.ContentItem{Title: strings.Join(interests, " ")}
	assert.Equal(t, 100.0, RelevanceScore(item, domain.UserProfile{Interests: interests}))
}

func TestQualityScore(t *testing.T) {
	long := strings.Repeat("x", 600)
	cases := []struct {
		name string
		item domain.ContentItem
		want float64
	}{
		{"unknown metadata", domain.ContentItem{SourceMetadata: domain.UnknownMetadata{}}, 60},
		{"nil metadata", domain.ContentItem{}, 60},
		{"reddit empty", domain.ContentItem{SourceMetadata: domain.RedditMetadata{}}, 30},
		{"reddit saturated", domain.ContentItem{
			Content:        long,
			SourceMetadata: domain.RedditMetadata{Score: 5000, Comments: 900, Subreddit: "golang"},
		}, 100},
		{"reddit medium body", domain.ContentItem{Content: strings.Repeat("я", 300), SourceMetadata: domain.RedditMetadata{}}, 35},
		{"reddit body at long edge", domain.ContentItem{Content: strings.Repeat("я", 500), SourceMetadata: domain.RedditMetadata{}}, 35},
		{"reddit long body", domain.ContentItem{Content: strings.Repeat("я", 501), SourceMetadata: domain.RedditMetadata{}}, 40},
		{"reddit short body", domain.ContentItem{Content: strings.Repeat("я", 200), SourceMetadata: domain.RedditMetadata{}}, 30},
		{"reddit half", domain.ContentItem{
			SourceMetadata: domain.RedditMetadata{Score: 500, Comments: 100, Subreddit: "random"},
		}, 55},
		{"aggregator saturated", domain.ContentItem{
			SourceMetadata: domain.AggregatorMetadata{VotesCount: 800, CommentsCount: 150, Categories: []string{"Developer Tools"}},
		}, 100},
		{"aggregator plain", domain.ContentItem{
			SourceMetadata: domain.AggregatorMetadata{VotesCount: 250},
		}, 47.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, QualityScore(tc.item), 1e-9)
		})
	}
}

func TestRecencyScoreMonotonic(t *testing.T) {
	prev := math.Inf(1)
	for h := 0; h <= 200; h += 8 {
		item := domain.ContentItem{PublishedAt: fixedNow.Add(-time.Duration(h) * time.Hour)}
		got := RecencyScoreAt(item, fixedNow, DefaultMaxAgeHours)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
	fresh := domain.ContentItem{PublishedAt: fixedNow}
	assert.Equal(t, 100.0, RecencyScoreAt(fresh, fixedNow, DefaultMaxAgeHours))
	future := domain.ContentItem{PublishedAt: fixedNow.Add(time.Hour)}
	assert.Equal(t, 100.0, RecencyScoreAt(future, fixedNow, DefaultMaxAgeHours))
	half := domain.ContentItem{PublishedAt: fixedNow.Add(-84 * time.Hour)}
	assert.InDelta(t, 50.0, RecencyScoreAt(half, fixedNow, DefaultMaxAgeHours), 1e-9)
}

func TestOptimizedWeights(t *testing.T) {
	for _, depth := range []domain.ContentDepth{"", domain.ContentDepthBrief, domain.ContentDepthDetailed} {
		w := OptimizedWeights(domain.UserProfile{ContentDepth: depth})
		assert.InDelta(t, 1.0, w.Sum(), 1e-9, "depth %q", depth)
	}
	detailed := OptimizedWeights(domain.UserProfile{ContentDepth: domain.ContentDepthDetailed})
	assert.InDelta(t, 0.4, detailed.Quality, 1e-9)
	assert.InDelta(t, 0.1, detailed.Recency, 1e-9)
	brief := OptimizedWeights(domain.UserProfile{ContentDepth: domain.ContentDepthBrief})
	assert.InDelta(t, 0.2, brief.Quality, 1e-9)
	assert.InDelta(t, 0.3, brief.Recency, 1e-9)
}

func TestDiversityPenalty(t *testing.T) {
	item := domain.ContentItem{Title: "Kubernetes operators", Content: "Writing reconcilers in Go"}
	assert.Zero(t, DiversityPenalty(item, nil))

	unrelated := domain.ContentItem{Title: "Sourdough baking", Content: "Hydration and starter care"}
	assert.Zero(t, DiversityPenalty(item, []domain.ContentItem{unrelated}))

	one := DiversityPenalty(item, []domain.ContentItem{item})
	assert.InDelta(t, 40.0, one, 1e-9)
	two := DiversityPenalty(item, []domain.ContentItem{item, item})
	assert.InDelta(t, 80.0, two, 1e-9)
}

func TestScoreMultipleItemsEmpty(t *testing.T) {
	got := newTestRanker().ScoreMultipleItems(nil, domain.UserProfile{}, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScoreMultipleItemsDiversityOrdering(t *testing.T) {
	published := fixedNow.Add(-2 * time.Hour)
	items := make([]domain.ContentItem, 0, 3)
	for i := 1; i <= 3; i++ {
		items = append(items, domain.ContentItem{
			RecordID:       fmt.Sprintf("r%d", i),
			Title:          fmt.Sprintf("React Guide %d", i),
			Content:        "Hooks, state management and rendering patterns for modern React applications.",
			SourceMetadata: domain.UnknownMetadata{},
			PublishedAt:    published,
		})
	}
	profile := domain.UserProfile{Interests: []string{"react"}}

	got := newTestRanker().ScoreMultipleItems(items, profile, nil)
	require.Len(t, got, 3)
	assert.Greater(t, got[0].RelevanceScore, got[1].RelevanceScore)
	assert.Greater(t, got[1].RelevanceScore, got[2].RelevanceScore)
	assert.Zero(t, got[0].DiversityPenalty)
	assert.Greater(t, got[2].DiversityPenalty, got[1].DiversityPenalty)
	assert.Equal(t, []string{"r1", "r2", "r3"}, []string{got[0].RecordID, got[1].RecordID, got[2].RecordID})
	for _, s := range got {
		assert.Equal(t, 15.0, s.Relevance)
	}
}

func TestScoreMultipleItemsBoundsAndOrder(t *testing.T) {
	items := []domain.ContentItem{
		{RecordID: "old", Title: "Legacy COBOL migration", PublishedAt: fixedNow.Add(-400 * time.Hour)},
		{RecordID: "go", Title: "Go generics in practice", Content: "type parameters", PublishedAt: fixedNow.Add(-time.Hour),
			SourceMetadata: domain.RedditMetadata{Score: 900, Comments: 150, Subreddit: "golang"}},
		{RecordID: "launch", Title: "New CI runner launched", PublishedAt: fixedNow.Add(-30 * time.Hour),
			SourceMetadata: domain.AggregatorMetadata{VotesCount: 300, Categories: []string{"Developer Tools"}}},
	}
	profile := domain.UserProfile{Interests: []string{"go"}, TechStack: []string{"generics"}, ContentDepth: domain.ContentDepthDetailed}

	got := newTestRanker().ScoreMultipleItems(items, profile, nil)
	require.Len(t, got, len(items))
	assert.Equal(t, "go", got[0].RecordID)
	for i, s := range got {
		assert.GreaterOrEqual(t, s.RelevanceScore, 0.0)
		assert.LessOrEqual(t, s.RelevanceScore, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].RelevanceScore, s.RelevanceScore)
		}
	}
}

func TestScoreMultipleItemsExplicitWeightsNormalized(t *testing.T) {
	items := []domain.ContentItem{{RecordID: "1", Title: "Anything", PublishedAt: fixedNow}}
	weights := domain.ScoreWeights{Relevance: 0, Quality: 2, Recency: 2, Diversity: 0}

	got := newTestRanker().ScoreMultipleItems(items, domain.UserProfile{}, &weights)
	require.Len(t, got, 1)
	// качество 60 и свежесть 100 с весами 0.5/0.5
	assert.InDelta(t, 80.0, got[0].RelevanceScore, 1e-9)
}

func TestOverallScoreMatchesBatch(t *testing.T) {
	r := newTestRanker()
	item := domain.ContentItem{RecordID: "1", Title: "Postgres partitioning", PublishedAt: fixedNow.Add(-10 * time.Hour)}
	profile := domain.UserProfile{Interests: []string{"postgres"}}
	w := OptimizedWeights(profile)

	single := r.OverallScore(item, profile, nil, w)
	batch := r.ScoreMultipleItems([]domain.ContentItem{item}, profile, &w)
	require.Len(t, batch, 1)
	assert.InDelta(t, batch[0].RelevanceScore, single, 1e-9)
}

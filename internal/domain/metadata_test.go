package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSourceMetadata(t *testing.T) {
	cases := []struct {
		name     string
		platform Platform
		raw      string
		want     SourceMetadata
	}{
		{"empty", PlatformReddit, "", UnknownMetadata{}},
		{"malformed", PlatformReddit, `{"score":`, UnknownMetadata{}},
		{"wrong types", PlatformProductHunt, `{"votesCount":"many"}`, UnknownMetadata{}},
		{"unknown platform", PlatformRSS, `{"score":10}`, UnknownMetadata{}},
		{"reddit", PlatformReddit, `{"score":120,"comments":14,"subreddit":"golang"}`, RedditMetadata{Score: 120, Comments: 14, Subreddit: "golang"}},
		{"hackernews", PlatformHackerNews, `{"score":300,"comments":80}`, RedditMetadata{Score: 300, Comments: 80}},
		{"producthunt", PlatformProductHunt, `{"votesCount":250,"commentsCount":12,"categories":["dev","ai"]}`, AggregatorMetadata{VotesCount: 250, CommentsCount: 12, Categories: []string{"dev", "ai"}}},
		{"platform case", Platform("Reddit"), `{"score":5}`, RedditMetadata{Score: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecodeSourceMetadata(tc.platform, []byte(tc.raw)))
		})
	}
}

func TestEncodeSourceMetadataRoundTrip(t *testing.T) {
	cases := []struct {
		platform Platform
		meta     SourceMetadata
	}{
		{PlatformReddit, RedditMetadata{Score: 42, Comments: 7, Subreddit: "programming"}},
		{PlatformProductHunt, AggregatorMetadata{VotesCount: 90, CommentsCount: 3, Categories: []string{"tools"}}},
	}
	for _, tc := range cases {
		raw, err := EncodeSourceMetadata(tc.meta)
		require.NoError(t, err)
		require.NotEmpty(t, raw)
		assert.Equal(t, tc.meta, DecodeSourceMetadata(tc.platform, raw))
	}
}

func TestEncodeUnknownMetadata(t *testing.T) {
	raw, err := EncodeSourceMetadata(UnknownMetadata{})
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Equal(t, UnknownMetadata{}, DecodeSourceMetadata(PlatformReddit, raw))
}

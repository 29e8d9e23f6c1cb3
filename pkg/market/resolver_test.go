package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCascade(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name    string
		text    string
		want    Resolution
		wantHit bool
	}{
		{
			name:    "uppercase ISO2",
			text:    "US",
			want:    Resolution{Country: "united states", Tier: "A", HourlyRate: 163},
			wantHit: true,
		},
		{
			name:    "lowercase iso2 falls through to alias",
			text:    "us",
			want:    Resolution{Country: "united states", Tier: "A", HourlyRate: 163},
			wantHit: true,
		},
		{
			name:    "ISO3 case-insensitive",
			text:    "deployed in Usa region",
			want:    Resolution{Country: "united states", Tier: "A", HourlyRate: 163},
			wantHit: true,
		},
		{
			name:    "colloquial alias",
			text:    "Bharat",
			want:    Resolution{Country: "india", Tier: "C", HourlyRate: 70},
			wantHit: true,
		},
		{
			name:    "fuzzy typo",
			text:    "Brazl",
			want:    Resolution{Country: "brazil", Tier: "B", HourlyRate: 116},
			wantHit: true,
		},
		{
			name:    "full name inside a sentence",
			text:    "the customer is based in Canada",
			want:    Resolution{Country: "canada", Tier: "A", HourlyRate: 163},
			wantHit: true,
		},
		{
			name:    "longest alias wins",
			text:    "United Arab Emirates office",
			want:    Resolution{Country: "united arab emirates", Tier: "B", HourlyRate: 116},
			wantHit: true,
		},
		{
			name:    "no match",
			text:    "Mars",
			wantHit: false,
		},
		{
			name:    "empty input",
			text:    "   ",
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.text)
			require.Equal(t, tt.wantHit, ok)
			if tt.wantHit {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	r := NewResolver()
	first, ok1 := r.Resolve("calculate for Germany please")
	second, ok2 := r.Resolve("calculate for Germany please")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestSimilarityRatio(t *testing.T) {
	assert.InDelta(t, 0.909, similarityRatio("brazl", "brazil"), 0.001)
	assert.Equal(t, 1.0, similarityRatio("india", "india"))
	assert.Less(t, similarityRatio("mars", "malta"), DefaultFuzzyCutoff)
}

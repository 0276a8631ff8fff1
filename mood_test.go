package glyphcat

import (
	"testing"

	"github.com/esimov/glyphcat/catalog"
	"github.com/stretchr/testify/assert"
)

func neutralInput() MoodInput {
	return MoodInput{
		Dominant:    RGB{128, 128, 128},
		Entropy:     2.2,
		EdgeDensity: 0.2,
		Circularity: 0.6,
		AspectRatio: 1.0,
		Harmony:     catalog.NoHarmony,
	}
}

func TestMood_Classify(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *MoodInput)
		want   Mood
	}{
		{
			name: "serene",
			modify: func(in *MoodInput) {
				in.Entropy = 1.0
				in.EdgeDensity = 0.005
			},
			want: Serene,
		},
		{
			name: "mysterious",
			modify: func(in *MoodInput) {
				in.Dominant = RGB{20, 30, 90}
				in.Entropy = 2.5
				in.EdgeDensity = 0.02
				in.Circularity = 0.7
			},
			want: Mysterious,
		},
		{
			name: "chaotic",
			modify: func(in *MoodInput) {
				in.Entropy = 7.8
			},
			want: Chaotic,
		},
		{
			name: "dramatic",
			modify: func(in *MoodInput) {
				in.Contrast = 1.0
			},
			want: Dramatic,
		},
		{
			name: "futuristic",
			modify: func(in *MoodInput) {
				in.AspectRatio = 0.5
			},
			want: Futuristic,
		},
		{
			name: "playful",
			modify: func(in *MoodInput) {
				in.Dominant = RGB{250, 240, 200}
				in.Entropy = 3.3
				in.Circularity = 0.4
			},
			want: Playful,
		},
		{
			name: "energetic",
			modify: func(in *MoodInput) {
				in.Dominant = RGB{255, 60, 0}
				in.Entropy = 4.5
				in.Harmony = catalog.Complementary
			},
			want: Energetic,
		},
		{
			name: "calm",
			modify: func(in *MoodInput) {
				in.Entropy = 2.7
				in.EdgeDensity = 0.02
				in.Harmony = catalog.Analogous
			},
			want: Calm,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := neutralInput()
			tt.modify(&in)
			assert.Equal(t, tt.want, ClassifyMood(in))
		})
	}
}

func TestMood_FirstMaximumWins(t *testing.T) {
	// Futuristic and mysterious both score 0.6.
	in := neutralInput()
	in.Dominant = RGB{40, 40, 40}
	in.AspectRatio = 0.5

	assert.Equal(t, Futuristic, ClassifyMood(in))
}

func TestMood_String(t *testing.T) {
	assert.Equal(t, "serene", Serene.String())
	assert.Equal(t, "chaotic", Chaotic.String())
	assert.Equal(t, "unknown", Mood(42).String())
}

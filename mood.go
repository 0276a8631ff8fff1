package glyphcat

import (
	"github.com/esimov/glyphcat/catalog"
	"github.com/esimov/glyphcat/utils"
)

// Mood is the heuristic emotional category of a glyph.
type Mood int

// The order matters: on equal scores the mood declared first wins.
const (
	Serene Mood = iota
	Calm
	Playful
	Energetic
	Futuristic
	Mysterious
	Dramatic
	Chaotic

	moodCount
)

var moodNames = [moodCount]string{
	"serene", "calm", "playful", "energetic",
	"futuristic", "mysterious", "dramatic", "chaotic",
}

func (m Mood) String() string {
	if m < 0 || m >= moodCount {
		return "unknown"
	}
	return moodNames[m]
}

// MoodInput holds the features the mood heuristic looks at.
type MoodInput struct {
	Dominant    RGB
	Entropy     float64
	EdgeDensity float64
	Texture     float64
	Contrast    float64
	Circularity float64
	AspectRatio float64
	EdgeAngle   float64
	Harmony     catalog.Harmony
}

// moodFeatures extends the input with the values derived from the dominant color.
type moodFeatures struct {
	MoodInput
	brightness float64
	hue        float64
	sat        float64
}

func (f *moodFeatures) warm() bool { return f.hue <= 60 || f.hue >= 330 }
func (f *moodFeatures) cool() bool { return f.hue >= 165 && f.hue <= 295 }

type moodScores [moodCount]float64

// moodRule adds its contribution to the scores.
type moodRule func(f *moodFeatures, s *moodScores)

var moodRules = []moodRule{
	// Entropy bands.
	func(f *moodFeatures, s *moodScores) {
		e := f.Entropy
		switch {
		case e < 2.2:
			s[Serene] += (2.2 - e) / 2.2
		case e <= 2.8:
			s[Calm] += (e - 2.2) / (2.8 - 2.2)
		case e <= 3.8:
			s[Playful] += (e - 2.8) / (3.8 - 2.8)
		case e <= 5.3:
			s[Energetic] += (e - 3.8) / (5.3 - 3.8)
		default:
			s[Chaotic] += utils.Min((e-5.3)/2.5, 1) * 0.4
		}
	},
	// Edge density bands.
	func(f *moodFeatures, s *moodScores) {
		e := f.EdgeDensity
		switch {
		case e < 0.01:
			s[Serene] += 0.3
		case e < 0.03:
			s[Calm] += 0.15
		case e < 0.06:
			s[Playful] += 0.3
		case e < 0.10:
			s[Energetic] += 0.3
		default:
			s[Chaotic] += 0.1
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.brightness > 180 {
			s[Playful] += 0.5
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.brightness < 80 {
			s[Mysterious] += 0.6
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.Contrast > 0.5 {
			s[Dramatic] += (f.Contrast - 0.5) / 0.5 * 0.8
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.sat > 0.6 {
			s[Energetic] += 0.6
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.sat < 0.2 {
			s[Calm] += 0.2
		}
	},
	func(f *moodFeatures, s *moodScores) {
		switch f.Harmony {
		case catalog.Analogous:
			s[Calm] += 0.2
		case catalog.Complementary:
			s[Energetic] += 0.3
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.Circularity > 0.8 {
			s[Serene] += 0.4
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.Circularity < 0.55 {
			s[Playful] += 0.4
		}
	},
	func(f *moodFeatures, s *moodScores) {
		a := f.AspectRatio
		if (a > 0.4 && a < 0.7) || (a > 1.3 && a < 1.6) {
			s[Futuristic] += 0.6
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.warm() && f.sat > 0.45 {
			s[Energetic] += 0.3
			s[Playful] += 0.2
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.cool() && f.brightness < 120 {
			s[Mysterious] += 0.3
			s[Calm] += 0.1
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.Entropy > 2.8 && f.Entropy <= 3.8 {
			s[Playful] += 0.3
		}
	},
	func(f *moodFeatures, s *moodScores) {
		if f.sat > 0.5 && f.brightness > 120 {
			s[Energetic] += 0.3
		}
	},
}

// ClassifyMood scores every mood with a fixed list of rules and returns the
// mood with the highest score.
func ClassifyMood(in MoodInput) Mood {
	c := in.Dominant
	f := &moodFeatures{
		MoodInput:  in,
		brightness: brightness(c),
		hue:        c.hue(),
		sat:        saturation(float64(c[0]), float64(c[1]), float64(c[2])),
	}

	var s moodScores
	for _, rule := range moodRules {
		rule(f, &s)
	}

	best := Serene
	for m := Serene; m < moodCount; m++ {
		if s[m] > s[best] {
			best = m
		}
	}
	return best
}

package music

import "github.com/Conceptual-Machines/art2music-api/internal/palette"

// Search is a track-search query derived from a drawing.
type Search struct {
	Genre string `json:"genre"`
	Mood  Mood   `json:"mood"`
	Query string `json:"query"`
}

var hueSearches = map[Hue]Search{
	HueRed:          {Genre: "rock", Mood: MoodEnergetic, Query: "energetic rock powerful"},
	HueBlue:         {Genre: "jazz", Mood: MoodCalm, Query: "calm jazz relaxing"},
	HueGreen:        {Genre: "acoustic", Mood: MoodNatural, Query: "acoustic nature peaceful"},
	HueYellowOrange: {Genre: "pop", Mood: MoodHappy, Query: "happy pop upbeat"},
	HuePurple:       {Genre: "electronic", Mood: MoodDreamy, Query: "dreamy electronic chill"},
	HueNeutral:      {Genre: "indie", Mood: MoodNeutral, Query: "indie chill vibes"},
}

// SearchFor builds the track-search query for stats using the same
// blank-canvas and hue rules as Mapper.Map.
func SearchFor(stats palette.Statistics) Search {
	if stats.ColoredPixels < MinColoredPixels {
		return Search{Genre: "ambient", Mood: MoodPeaceful, Query: "peaceful ambient"}
	}

	s := hueSearches[ClassifyHue(stats.AverageR, stats.AverageG, stats.AverageB)]
	switch {
	case stats.Brightness < darkBrightness:
		s.Query += " dark moody"
	case stats.Brightness > brightBrightness:
		s.Query += " bright uplifting"
	}
	return s
}

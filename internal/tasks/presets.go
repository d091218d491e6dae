package tasks

// PresetItem is one entry of a preset bundle.
type PresetItem struct {
	Time string `json:"time"`
	Name string `json:"name"`
}

type Preset struct {
	Name  string       `json:"name"`
	Items []PresetItem `json:"items"`
}

// presets are kept in display order.
var presets = []Preset{
	{Name: "training", Items: []PresetItem{
		{"05:00", "Wake up"},
		{"05:15", "Drink 500ml water"},
		{"05:30", "Dynamic stretching"},
		{"05:45", "Cardio warm-up"},
		{"06:00", "Main workout"},
		{"07:00", "Cool down"},
		{"07:15", "Protein shake"},
		{"07:30", "Shower"},
		{"08:00", "Healthy breakfast"},
	}},
	{Name: "learning", Items: []PresetItem{
		{"09:00", "Set daily learning goals"},
		{"09:15", "Read technical material"},
		{"10:15", "Take detailed notes"},
		{"10:45", "Rest eyes - look at distance"},
		{"11:00", "Practice exercises"},
		{"12:00", "Lunch break"},
		{"13:00", "Review morning materials"},
		{"14:00", "Deep work session"},
		{"15:30", "Take a walk - process information"},
	}},
	{Name: "motivational", Items: []PresetItem{
		{"06:30", "Good morning! You're up and making progress!"},
		{"08:30", "Great start to the day - keep the momentum!"},
		{"10:30", "Stay focused, you're doing fantastic work!"},
		{"12:30", "Halfway through the day - you got this!"},
		{"14:30", "Your dedication is inspiring!"},
		{"16:30", "Push through - excellence takes persistence!"},
		{"18:30", "Reflect on today's wins, big and small"},
		{"20:30", "Wind down - you've earned your rest"},
	}},
	{Name: "productivity", Items: []PresetItem{
		{"08:30", "Plan your day and set priorities"},
		{"09:00", "Focus on most important task"},
		{"10:30", "Check and respond to urgent emails"},
		{"11:00", "Second important task"},
		{"12:30", "Reflect on morning progress"},
		{"13:30", "Third important task"},
		{"15:00", "Quick administrative work"},
		{"16:00", "Plan for tomorrow"},
		{"17:00", "Review day's accomplishments"},
	}},
	{Name: "wellness", Items: []PresetItem{
		{"07:00", "Morning meditation"},
		{"10:00", "Hydration check"},
		{"12:00", "Mindful eating lunch"},
		{"14:00", "Quick breathing exercise"},
		{"15:30", "Stretch break"},
		{"17:00", "Evening walk"},
		{"19:00", "Screen-free time"},
		{"21:00", "Evening reflection"},
		{"22:00", "Sleep preparation routine"},
	}},
}

// Presets lists the available bundles.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		out[i] = Preset{Name: p.Name, Items: append([]PresetItem(nil), p.Items...)}
	}
	return out
}

// PresetNames lists bundle names in display order.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

func findPreset(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

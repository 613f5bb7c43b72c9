package models

type TextPreset struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

const DefaultTextPresetID = "classic"

var textPresets = []TextPreset{
	{
		ID:     "classic",
		Label:  "Classic hook",
		Top:    "The 5-minute habit that\nchanged my mornings",
		Bottom: "Save this for later",
	},
	{
		ID:     "announce",
		Label:  "Announcement",
		Top:    "Big news drops\nthis Friday",
		Bottom: "Turn on notifications",
	},
	{
		ID:     "minimal",
		Label:  "Minimal",
		Top:    "Less, but better.",
		Bottom: "Full story in bio",
	},
}

// TextPresets returns the fixed starting-point catalog in display order.
func TextPresets() []TextPreset {
	out := make([]TextPreset, len(textPresets))
	copy(out, textPresets)
	return out
}

func LookupTextPreset(id string) (TextPreset, bool) {
	for _, p := range textPresets {
		if p.ID == id {
			return p, true
		}
	}
	return TextPreset{}, false
}

package filters

import "wikijobs/pkg/models"

// Preset identifiers
const (
	PresetRemoteFriendly = "remote-friendly"
	PresetReturnProgram  = "return-program"
	PresetFlexibleHybrid = "flexible-hybrid"
)

// Presets returns the predefined filter combinations
func Presets() []models.FilterPreset {
	return []models.FilterPreset{
		{
			ID:          PresetRemoteFriendly,
			Name:        "Remote Friendly",
			Description: "Remote jobs with flexible hours",
			Filters: models.JobFilters{
				FlexibleHours: true,
				WorkTypes:     []string{string(models.WorkTypeRemote)},
				Categories:    []string{},
			},
		},
		{
			ID:          PresetReturnProgram,
			Name:        "Return Program",
			Description: "Jobs with dedicated return-to-work programs and mentorship",
			Filters: models.JobFilters{
				ReturnToWork: true,
				Mentorship:   true,
				WorkTypes:    []string{},
				Categories:   []string{},
			},
		},
		{
			ID:          PresetFlexibleHybrid,
			Name:        "Flexible Hybrid",
			Description: "Hybrid roles with flexible hours",
			Filters: models.JobFilters{
				FlexibleHours: true,
				WorkTypes:     []string{string(models.WorkTypeHybrid)},
				Categories:    []string{},
			},
		},
	}
}

// PresetByID looks up a preset
func PresetByID(id string) (models.FilterPreset, bool) {
	for _, p := range Presets() {
		if p.ID == id {
			return p, true
		}
	}
	return models.FilterPreset{}, false
}

// ApplyPreset returns the preset's filters with its categories narrowed to
// those present in available. The preset replaces any current filters.
func ApplyPreset(preset models.FilterPreset, available []string) models.JobFilters {
	present := make(map[string]bool, len(available))
	for _, c := range available {
		present[c] = true
	}

	f := preset.Filters
	f.WorkTypes = append([]string{}, preset.Filters.WorkTypes...)
	f.Categories = make([]string, 0, len(preset.Filters.Categories))
	for _, c := range preset.Filters.Categories {
		if present[c] {
			f.Categories = append(f.Categories, c)
		}
	}
	return f
}

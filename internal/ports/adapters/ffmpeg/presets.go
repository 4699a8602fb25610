package ffmpeg

import (
	"fmt"
	"sort"
)

// VocalPreset names one entry in the fixed vocal-attenuation table.
// Each preset is a complete ffmpeg audio filter graph; there is no
// computation behind the table, only tuned constants.
type VocalPreset struct {
	Name   string
	Filter string
	Note   string
}

var vocalPresets = []VocalPreset{
	{
		Name:   "center-cut",
		Filter: "pan=stereo|c0=c0-c1|c1=c1-c0",
		Note:   "classic out-of-phase center cancellation; strongest, mono-unsafe",
	},
	{
		Name:   "soft-cut",
		Filter: "pan=stereo|c0=c0-0.6*c1|c1=c1-0.6*c0",
		Note:   "partial center cancellation, keeps some body in the mix",
	},
	{
		Name:   "mid-scoop",
		Filter: "stereotools=mlev=0.1,highpass=f=120,lowpass=f=12000",
		Note:   "mid-level drop with band guards for bass and cymbals",
	},
	{
		Name:   "karaoke",
		Filter: "stereotools=mlev=0.015",
		Note:   "near-total mid removal",
	},
	{
		Name:   "vocal-duck",
		Filter: "firequalizer=gain_entry='entry(0,0);entry(250,0);entry(300,-18);entry(3500,-18);entry(4000,0)'",
		Note:   "notches the vocal band instead of the stereo center",
	},
	{
		Name:   "off",
		Filter: "anull",
		Note:   "pass-through, for timing runs against the original mix",
	},
}

// Presets returns the attenuation table sorted by name.
func Presets() []VocalPreset {
	out := make([]VocalPreset, len(vocalPresets))
	copy(out, vocalPresets)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPreset resolves a preset by name.
func LookupPreset(name string) (VocalPreset, error) {
	for _, p := range vocalPresets {
		if p.Name == name {
			return p, nil
		}
	}
	return VocalPreset{}, fmt.Errorf("ffmpeg: unknown vocal preset %q", name)
}

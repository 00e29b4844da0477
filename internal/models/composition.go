package models

// GenerationRequest carries one composition request
type GenerationRequest struct {
	Features ImageFeatures   `json:"features"`
	Params   MusicParameters `json:"params"`
	Genre    string          `json:"genre,omitempty"` // Optional genre override, e.g. "RETROWAVE"
	Mode     string          `json:"mode,omitempty"`  // Opaque tag, echoed back
	Seed     *uint64         `json:"seed,omitempty"`  // Optional seed for reproducible humanization
	Stems    bool            `json:"stems,omitempty"` // Also write one file per track

	// Key sets the root by note name, e.g. "A3", instead of Params.BaseFrequency.
	Key string `json:"key,omitempty"`
	// Chords replaces the genre progression, one symbol per bar, e.g. ["Am", "F", "C/E", "G"].
	Chords []string `json:"chords,omitempty"`

	// Drums is an optional drum grid program, e.g.
	// pattern(drum=kick, grid="x---x---x---x---"); pattern(drum=snare, grid="----x-------x---")
	Drums string `json:"drums,omitempty"`

	// OutputPath and StemsDir override the generated file locations.
	// Only the CLI sets them.
	OutputPath string `json:"-"`
	StemsDir   string `json:"-"`
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/theory"
)

type GenreHandler struct {
	catalog *genre.Catalog
}

func NewGenreHandler(catalog *genre.Catalog) *GenreHandler {
	return &GenreHandler{catalog: catalog}
}

type SectionInfo struct {
	Kind     genre.SectionKind `json:"kind"`
	Bars     int               `json:"bars"`
	Energy   float64           `json:"energy"`
	Dramatic bool              `json:"dramatic,omitempty"`
}

type GenreInfo struct {
	Genre               genre.Genre    `json:"genre"`
	Name                string         `json:"name"`
	MinTempo            int            `json:"min_tempo"`
	MaxTempo            int            `json:"max_tempo"`
	TemplateBars        int            `json:"template_bars"`
	DropEnergyThreshold float64        `json:"drop_energy_threshold"`
	Scales              []theory.Scale `json:"scales"`
	Roles               []genre.Role   `json:"roles"`
	Sections            []SectionInfo  `json:"sections"`
}

// ListGenres returns every catalog profile.
func (h *GenreHandler) ListGenres(c *gin.Context) {
	out := make([]GenreInfo, 0, len(h.catalog.Genres()))
	for _, g := range h.catalog.Genres() {
		p, err := h.catalog.Profile(g)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, genreInfo(p))
	}
	c.JSON(http.StatusOK, gin.H{"genres": out})
}

func genreInfo(p genre.Profile) GenreInfo {
	info := GenreInfo{
		Genre:               p.Genre,
		Name:                p.Name,
		MinTempo:            p.MinTempo,
		MaxTempo:            p.MaxTempo,
		TemplateBars:        p.TemplateBars(),
		DropEnergyThreshold: p.DropEnergyThreshold,
		Scales:              p.PreferredScales,
	}
	for _, l := range p.Layers {
		info.Roles = append(info.Roles, l.Role)
	}
	for _, s := range p.Sections {
		info.Sections = append(info.Sections, SectionInfo{
			Kind:     s.Kind,
			Bars:     s.Bars,
			Energy:   s.Energy,
			Dramatic: s.DramaticMoment,
		})
	}
	return info
}

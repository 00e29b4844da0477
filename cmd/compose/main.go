// Command compose turns an image's feature and parameter vectors into a
// Standard MIDI File without running the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/config"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/genre"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/midiinfo"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/services"
)

func main() {
	var (
		avgR         = flag.Float64("r", 0.5, "average red [0,1]")
		avgG         = flag.Float64("g", 0.5, "average green [0,1]")
		avgB         = flag.Float64("b", 0.5, "average blue [0,1]")
		brightness   = flag.Float64("brightness", 0.5, "image brightness [0,1]")
		hue          = flag.Float64("hue", 0.5, "dominant hue [0,1]")
		saturation   = flag.Float64("saturation", 0.5, "saturation [0,1]")
		colorfulness = flag.Float64("colorfulness", 0.5, "colorfulness [0,1]")
		contrast     = flag.Float64("contrast", 0.5, "contrast [0,1]")

		tempo     = flag.Float64("tempo", 120, "requested tempo in BPM, clamped to the genre range")
		freq      = flag.Float64("freq", 261.63, "base frequency in Hz, sets the root note")
		energy    = flag.Float64("energy", 0.5, "energy [0,1]")
		tone      = flag.Float64("tone", 0.5, "musical brightness [0,1]")
		reverb    = flag.Float64("reverb", 0.3, "reverb amount [0,1]")
		scaleType = flag.Int("scale", 0, "scale: 0 major, 1 minor, 2 dorian, 3 lydian")
		patType   = flag.Int("pattern", 0, "pattern: 0 pad, 1 pluck, 2 bell")

		genreTag = flag.String("genre", "", "genre override: EDM_CHILL|EDM_DROP|RETROWAVE|CINEMATIC")
		mode     = flag.String("mode", "", "opaque mode tag echoed in the result")
		drums    = flag.String("drums", "", "drum grid program, e.g. 'pattern(drum=kick, grid=\"x---x---x---x---\")'")
		key      = flag.String("key", "", "root note name, e.g. A3; overrides -freq")
		chords   = flag.String("chords", "", "comma-separated chord symbols, one per bar, e.g. Am,F,C/E,G")
		seed     = flag.Uint64("seed", 0, "humanization seed (default from SC_HUMANIZE_SEED)")
		out      = flag.String("out", "composition.mid", "output .mid path")
		stems    = flag.String("stems", "", "also write one file per track into `DIR`")
		inspect  = flag.String("inspect", "", "print a summary of an existing .mid `FILE` and exit")
		asJSON   = flag.Bool("json", false, "print the full result as JSON")
	)
	flag.Parse()

	if *inspect != "" {
		summary, err := midiinfo.Inspect(*inspect)
		if err != nil {
			log.Fatal(err)
		}
		printSummary(os.Stdout, *inspect, summary)
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	req := models.GenerationRequest{
		Features: models.ImageFeatures{
			AvgR:         *avgR,
			AvgG:         *avgG,
			AvgB:         *avgB,
			Brightness:   *brightness,
			Hue:          *hue,
			Saturation:   *saturation,
			Colorfulness: *colorfulness,
			Contrast:     *contrast,
		},
		Params: models.MusicParameters{
			TempoBPM:      *tempo,
			BaseFrequency: *freq,
			Energy:        *energy,
			Brightness:    *tone,
			Reverb:        *reverb,
			ScaleType:     *scaleType,
			PatternType:   *patType,
		},
		Genre:      *genreTag,
		Mode:       *mode,
		Key:        *key,
		Chords:     splitList(*chords),
		Drums:      *drums,
		OutputPath: *out,
		StemsDir:   *stems,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			req.Seed = seed
		}
	})

	svc := services.NewGenerationService(cfg, genre.NewCatalog(), nil)
	res, err := svc.Generate(context.Background(), req)
	if err != nil {
		log.Fatal(err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatal(err)
		}
		return
	}
	printResult(os.Stdout, res)
}

func printResult(w io.Writer, res *services.GenerationResult) {
	fmt.Fprintf(w, "%s  %d BPM  %s %s  %d bars  seed %d\n",
		res.Genre, res.TempoBPM, res.RootName, res.Scale, res.TotalBars, res.Seed)
	fmt.Fprintf(w, "style: mood %.2f, %s, %s\n\n", res.Style.MoodScore, res.Style.Ambience, res.Style.Preset)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tBARS\tENERGY\tDROP")
	for _, s := range res.Sections {
		drop := ""
		if s.DramaticMoment {
			drop = fmt.Sprintf("x%.2f", s.DramaIntensity)
		}
		fmt.Fprintf(tw, "%s\t%d-%d\t%.2f\t%s\n", s.Name, s.StartBar, s.StartBar+s.Bars-1, s.TargetEnergy, drop)
	}
	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tCHANNEL\tPROGRAM\tNOTES")
	for _, t := range res.Tracks {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", t.Name, t.Channel, t.Program, t.Notes)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nwrote %s (%d notes, %.1fs)\n", res.Path, res.Summary.Notes, res.Summary.Seconds)
	for _, s := range res.Stems {
		fmt.Fprintf(w, "  stem %s\n", s)
	}
}

func printSummary(w io.Writer, path string, s *midiinfo.Summary) {
	fmt.Fprintf(w, "%s: %d ticks/quarter, %.2f BPM, %d/%d, %d ticks (%.1fs), %d notes\n",
		path, s.TicksPerQuarter, s.TempoBPM, s.Numerator, s.Denominator, s.TotalTicks, s.Seconds, s.Notes)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tNOTES\tCHANNELS\tEND")
	for i, t := range s.Tracks {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fmt.Fprintf(tw, "%s\t%d\t%v\t%d\n", name, t.Notes, t.Channels, t.EndTick)
	}
	tw.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

package levels

import (
	_ "embed"
	"fmt"
	"math"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type sampleGenerator struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"nome"`
	LevelPercent    *float64 `yaml:"nivel_percent"`
	AutonomyHours   *float64 `yaml:"autonomia_value"`
	TankVolume      *float64 `yaml:"volume_tanque"`
	LitersAvailable *float64 `yaml:"litros_disponiveis"`
	Location        string   `yaml:"local"`
	UpdatedDisplay  string   `yaml:"ultima_atualizacao_display"`
	UpdatedISO      string   `yaml:"ultima_atualizacao_iso"`
}

type sampleFile struct {
	Generators []sampleGenerator `yaml:"generators"`
}

var (
	samplesOnce sync.Once
	samples     []sampleGenerator
	samplesErr  error
)

func loadSamples() ([]sampleGenerator, error) {
	samplesOnce.Do(func() {
		var file sampleFile
		if err := yaml.Unmarshal(fallbackYAML, &file); err != nil {
			samplesErr = fmt.Errorf("decode fallback samples: %w", err)
			return
		}
		samples = file.Generators
	})
	return samples, samplesErr
}

// SampleGenerators returns the demonstration generators shown when the
// backend cannot be reached. They are always offline.
func (p *Pipeline) SampleGenerators(now time.Time) ([]Record, error) {
	items, err := loadSamples()
	if err != nil {
		return nil, err
	}

	nowDisplay := p.NowDisplay(now)
	out := make([]Record, 0, len(items))
	for _, item := range items {
		noDiff := "—"
		rec := Record{
			PublicRecord: PublicRecord{
				ID:              item.ID,
				Name:            item.Name,
				Location:        orDefault(item.Location, unknownLocation),
				StatusLabel:     onlineLabel(false),
				ElapsedDisplay:  &noDiff,
				CivilNowDisplay: nowDisplay,
			},
		}
		rec.applyLevel(NormalizeLevel(item.LevelPercent))
		if item.AutonomyHours != nil {
			display := formatHours(*item.AutonomyHours)
			rec.AutonomyHours = floatPtr(*item.AutonomyHours)
			rec.AutonomyDisplay = &display
		}
		if item.TankVolume != nil {
			rec.TankVolume = floatPtr(*item.TankVolume)
		}
		if item.UpdatedDisplay != "" {
			display := item.UpdatedDisplay
			rec.UpdatedDisplay = &display
		}
		if item.UpdatedISO != "" {
			iso := item.UpdatedISO
			rec.UpdatedISO = &iso
		}

		if vol := ComputeVolume(rec.LevelPercent, item.TankVolume); vol != nil {
			rec.CurrentVolume = floatPtr(vol.Current)
			rec.VolumeToFull = floatPtr(vol.ToFull)
			if item.LitersAvailable != nil {
				rec.LitersAvailable = floatPtr(*item.LitersAvailable)
			} else {
				rec.LitersAvailable = floatPtr(math.Ceil(vol.ToFull))
			}
		} else if item.LitersAvailable != nil {
			rec.LitersAvailable = floatPtr(*item.LitersAvailable)
		}

		out = append(out, rec)
	}
	return out, nil
}

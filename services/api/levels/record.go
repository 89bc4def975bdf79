package levels

import (
	"math"
	"time"
)

const (
	defaultGeneratorName  = "Gerador"
	defaultLocomotiveName = "Locomotiva"
	defaultElevatorName   = "Elevador"
	unknownLocation       = "Local não informado"
	unknownBase           = "Base não informada"
	unknownFuel           = "—"

	stateOnLabel  = "ATIVADO"
	stateOffLabel = "DESATIVADO"
)

// RawAssetRecord is one monitored asset as read from the backend. Values are
// loosely typed: numbers may arrive as strings and blobs as JSON text.
type RawAssetRecord struct {
	ID             any
	Name           any
	Type           any
	DisplayEnabled any
	Level          any
	UpdatedAt      any
	Data           any
	Station        any
	Location       any
	// Capacity overrides the "tanque" entry of Data when set.
	Capacity any
}

// RecordFromMap reads a backend row keyed by its column names.
func RecordFromMap(row map[string]any) RawAssetRecord {
	return RawAssetRecord{
		ID:             row["id"],
		Name:           row["nome"],
		Type:           row["tipo"],
		DisplayEnabled: row["exibeNivel"],
		Level:          row["nivelAtual"],
		UpdatedAt:      row["ultimaAtualizacao"],
		Data:           row["dados"],
		Station:        row["estacao"],
		Location:       row["local"],
		Capacity:       row["tanque"],
	}
}

// LocomotiveRow is one row of the locomotives table.
type LocomotiveRow struct {
	ID             string
	Tag            string
	Model          string
	Base           string
	Fuel           string
	TankVolume     any
	Level          any
	DisplayEnabled any
	UpdatedAt      any
	CreatedAt      any
	PhotoURL       string
}

// ElevatorRow is one elevator from the equipment table.
type ElevatorRow struct {
	ID        string
	Name      string
	Location  any
	Station   any
	UpdatedAt any
	State     any
}

// PublicRecord is the level record exposed by the JSON API.
type PublicRecord struct {
	ID              string   `json:"id"`
	Name            string   `json:"nome"`
	Tag             string   `json:"tag,omitempty"`
	Model           string   `json:"modelo,omitempty"`
	Fuel            string   `json:"combustivel,omitempty"`
	Location        string   `json:"local"`
	LevelPercent    *float64 `json:"nivel_percent"`
	LevelDisplay    string   `json:"nivel_display"`
	Status          Tier     `json:"nivel_status"`
	LevelColor      string   `json:"level_color"`
	CriticalFocus   bool     `json:"is_critical_focus"`
	AutonomyHours   *float64 `json:"autonomia_value"`
	AutonomyDisplay *string  `json:"autonomia_display"`
	TankVolume      *float64 `json:"volume_tanque"`
	CurrentVolume   *float64 `json:"volume_atual"`
	VolumeToFull    *float64 `json:"volume_para_completar"`
	LitersAvailable *float64 `json:"litros_disponiveis"`
	MapsURL         *string  `json:"maps_url"`
	PhotoURL        *string  `json:"foto_url,omitempty"`
	UpdatedDisplay  *string  `json:"ultima_atualizacao_display"`
	UpdatedISO      *string  `json:"ultima_atualizacao_iso"`
	Online          bool     `json:"status_online"`
	StatusLabel     string   `json:"status_label"`
	ElapsedMinutes  *float64 `json:"ultima_diff_minutes"`
	ElapsedDisplay  *string  `json:"ultima_diff_display"`
	CivilNowDisplay string   `json:"brasilia_now_display"`
}

// Record is the full assembled record, including fields kept off the API.
type Record struct {
	PublicRecord
	Data      map[string]any `json:"dados,omitempty"`
	UpdatedAt *time.Time     `json:"-"`
}

// Public returns the API-safe subset of the record.
func (r Record) Public() PublicRecord {
	return r.PublicRecord
}

// ElevatorRecord is the operational view of one elevator.
type ElevatorRecord struct {
	ID             string   `json:"id"`
	Name           string   `json:"nome"`
	Location       string   `json:"local"`
	MapsURL        *string  `json:"maps_url"`
	Online         bool     `json:"status_online"`
	StatusLabel    string   `json:"status_label"`
	ElapsedMinutes *float64 `json:"ultima_diff_minutes"`
	UpdatedDisplay *string  `json:"ultima_atualizacao_display"`
	Active         bool     `json:"estado_ativo"`
	StateLabel     string   `json:"estado_label"`
}

// Options tune a Pipeline.
type Options struct {
	// Zone is the civil zone; DefaultZone when nil.
	Zone *time.Location
}

// Pipeline turns backend rows into display records.
type Pipeline struct {
	zone *time.Location
}

// NewPipeline constructs a Pipeline.
func NewPipeline(opts Options) *Pipeline {
	zone := opts.Zone
	if zone == nil {
		zone = DefaultZone
	}
	return &Pipeline{zone: zone}
}

// Zone returns the civil zone used by the pipeline.
func (p *Pipeline) Zone() *time.Location {
	return p.zone
}

// NowDisplay formats now in the civil zone.
func (p *Pipeline) NowDisplay(now time.Time) string {
	return *FormatCivil(&now, p.zone)
}

// Generators assembles generator records, skipping rows not flagged for display.
func (p *Pipeline) Generators(rows []RawAssetRecord, now time.Time) []Record {
	nowDisplay := p.NowDisplay(now)
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if !CoerceBool(row.DisplayEnabled) {
			continue
		}

		data := CoerceMapping(row.Data)
		percent := NormalizeLevel(row.Level)
		capacity := CoerceFloat(row.Capacity)
		if capacity == nil {
			capacity = CoerceFloat(data["tanque"])
		}
		ts := ParseTimestamp(row.UpdatedAt, p.zone)
		fresh := EvaluateFreshness(ts, now, p.zone)

		rec := Record{
			PublicRecord: PublicRecord{
				ID:              CoerceString(row.ID),
				Name:            orDefault(CoerceString(row.Name), defaultGeneratorName),
				Location:        orDefault(stationLabel(row.Station), unknownLocation),
				MapsURL:         BuildMapsURL(row.Location),
				TankVolume:      capacity,
				CivilNowDisplay: nowDisplay,
			},
			Data:      data,
			UpdatedAt: ts,
		}
		rec.applyLevel(percent)
		rec.applyVolume(ComputeVolume(percent, capacity))
		rec.applyFreshness(fresh, row.UpdatedAt)

		if hours := Autonomy(percent, CoerceFloat(data["autonomia"])); hours != nil {
			display := formatHours(*hours)
			rec.AutonomyHours = hours
			rec.AutonomyDisplay = &display
		}

		out = append(out, rec)
	}
	return out
}

// Locomotives assembles locomotive records. Locomotives report liters
// available as the rounded-up volume to fill, and clamp elapsed time at zero.
func (p *Pipeline) Locomotives(rows []LocomotiveRow, now time.Time) []Record {
	nowDisplay := p.NowDisplay(now)
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if !CoerceBool(row.DisplayEnabled) {
			continue
		}

		percent := NormalizeLevel(row.Level)
		capacity := CoerceFloat(row.TankVolume)
		ts := ParseTimestamp(row.UpdatedAt, p.zone)
		if ts == nil {
			ts = ParseTimestamp(row.CreatedAt, p.zone)
		}
		fresh := EvaluateFreshness(ts, now, p.zone)
		if fresh.ElapsedMinutes != nil && *fresh.ElapsedMinutes < 0 {
			clamped := 0.0
			display := formatMinutes(clamped)
			fresh.ElapsedMinutes = &clamped
			fresh.ElapsedDisplay = &display
		}
		if fresh.ElapsedMinutes != nil {
			fresh.Online = *fresh.ElapsedMinutes <= OnlineWindow.Minutes()
			fresh.Label = onlineLabel(fresh.Online)
		}

		rec := Record{
			PublicRecord: PublicRecord{
				ID:              row.ID,
				Name:            orDefault(row.Tag, orDefault(row.Model, defaultLocomotiveName)),
				Tag:             row.Tag,
				Model:           row.Model,
				Fuel:            orDefault(row.Fuel, unknownFuel),
				Location:        orDefault(row.Base, unknownBase),
				TankVolume:      capacity,
				CivilNowDisplay: nowDisplay,
			},
			UpdatedAt: ts,
		}
		if row.PhotoURL != "" {
			photo := row.PhotoURL
			rec.PhotoURL = &photo
		}
		rec.applyLevel(percent)
		if vol := ComputeVolume(percent, capacity); vol != nil {
			vol.LitersAvailable = math.Ceil(vol.ToFull)
			rec.applyVolume(vol)
		}
		rec.applyFreshness(fresh, nil)

		out = append(out, rec)
	}
	return out
}

// Elevators assembles the operational view of elevators.
func (p *Pipeline) Elevators(rows []ElevatorRow, now time.Time) []ElevatorRecord {
	out := make([]ElevatorRecord, 0, len(rows))
	for _, row := range rows {
		ts := ParseTimestamp(row.UpdatedAt, p.zone)
		fresh := EvaluateFreshness(ts, now, p.zone)

		label := elevatorLocation(row)
		address := AddressText(row.Location)
		if address == "" {
			address = label
		}

		display := fresh.Display
		if display == nil {
			if raw := CoerceString(row.UpdatedAt); raw != "" {
				display = &raw
			}
		}

		active := CoerceBool(row.State)
		out = append(out, ElevatorRecord{
			ID:             row.ID,
			Name:           orDefault(row.Name, defaultElevatorName),
			Location:       label,
			MapsURL:        MapsURL(address),
			Online:         fresh.Online,
			StatusLabel:    fresh.Label,
			ElapsedMinutes: fresh.ElapsedMinutes,
			UpdatedDisplay: display,
			Active:         active,
			StateLabel:     StateLabel(active),
		})
	}
	return out
}

// LatestUpdate returns the most recent UpdatedAt across records, or nil.
func LatestUpdate(records []Record) *time.Time {
	var latest *time.Time
	for i := range records {
		ts := records[i].UpdatedAt
		if ts == nil {
			continue
		}
		if latest == nil || ts.After(*latest) {
			latest = ts
		}
	}
	return latest
}

// StateLabel is the operator-facing label of an on/off state.
func StateLabel(active bool) string {
	if active {
		return stateOnLabel
	}
	return stateOffLabel
}

func (r *Record) applyLevel(percent *float64) {
	r.LevelPercent = percent
	r.LevelDisplay = LevelDisplay(percent)
	r.Status = Classify(percent)
	r.LevelColor = LevelColor(percent)
	r.CriticalFocus = CriticalFocus(percent)
}

func (r *Record) applyVolume(vol *Volume) {
	if vol == nil {
		return
	}
	r.CurrentVolume = floatPtr(vol.Current)
	r.VolumeToFull = floatPtr(vol.ToFull)
	r.LitersAvailable = floatPtr(vol.LitersAvailable)
}

// applyFreshness copies freshness fields; when the timestamp did not parse,
// the raw value is kept for display.
func (r *Record) applyFreshness(f Freshness, raw any) {
	r.Online = f.Online
	r.StatusLabel = f.Label
	r.ElapsedMinutes = f.ElapsedMinutes
	r.ElapsedDisplay = f.ElapsedDisplay
	r.UpdatedDisplay = f.Display
	r.UpdatedISO = f.ISO
	if f.Display != nil {
		return
	}
	if text := CoerceString(raw); text != "" {
		cleaned := stripUTC(text)
		r.UpdatedDisplay = &cleaned
		r.UpdatedISO = &text
	}
}

func stationLabel(station any) string {
	meta := CoerceMapping(station)
	if label := CoerceString(meta["estacao"]); label != "" {
		return label
	}
	if len(meta) == 0 {
		if text, ok := station.(string); ok {
			return text
		}
	}
	return ""
}

func elevatorLocation(row ElevatorRow) string {
	if label := CoerceString(CoerceMapping(row.Station)["estacao"]); label != "" {
		return label
	}
	local := CoerceMapping(row.Location)
	for _, key := range []string{"estacao", "nome", "codigo"} {
		if label := CoerceString(local[key]); label != "" {
			return label
		}
	}
	if text, ok := row.Location.(string); ok && len(local) == 0 {
		if label := CoerceString(text); label != "" {
			return label
		}
	}
	if text, ok := row.Station.(string); ok {
		return CoerceString(text)
	}
	return ""
}

func onlineLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func floatPtr(v float64) *float64 {
	return &v
}

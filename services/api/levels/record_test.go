package levels

import (
	"encoding/json"
	"testing"
	"time"
)

var testNow = time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC)

func TestGeneratorsEndToEnd(t *testing.T) {
	p := NewPipeline(Options{})
	rows := []RawAssetRecord{
		RecordFromMap(map[string]any{
			"id":                "gen-1",
			"nome":              "Gerador Sede",
			"nivelAtual":        0.855,
			"tanque":            500,
			"ultimaAtualizacao": testNow.Add(-30 * time.Second).Format(time.RFC3339),
			"exibeNivel":        true,
			"dados":             `{"autonomia": 40}`,
			"estacao":           map[string]any{"estacao": "Estação Central"},
			"local":             map[string]any{"rua": "Rua A", "cidade": "Poá"},
		}),
	}

	got := p.Generators(rows, testNow)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	rec := got[0]
	if rec.LevelPercent == nil || *rec.LevelPercent != 85.5 {
		t.Fatalf("nivel_percent = %v", rec.LevelPercent)
	}
	if rec.Status != TierSafe {
		t.Fatalf("nivel_status = %s", rec.Status)
	}
	if !rec.Online || rec.StatusLabel != "online" {
		t.Fatalf("expected online, got %+v", rec.PublicRecord)
	}
	if rec.CurrentVolume == nil || *rec.CurrentVolume != 427.5 {
		t.Fatalf("volume_atual = %v", rec.CurrentVolume)
	}
	if rec.LitersAvailable == nil || *rec.LitersAvailable != 72 {
		t.Fatalf("litros_disponiveis = %v", rec.LitersAvailable)
	}
	if rec.AutonomyDisplay == nil || *rec.AutonomyDisplay != "34.2 h" {
		t.Fatalf("autonomia_display = %v", rec.AutonomyDisplay)
	}
	if rec.Location != "Estação Central" {
		t.Fatalf("local = %q", rec.Location)
	}
	if rec.MapsURL == nil {
		t.Fatal("maps_url missing")
	}
	if rec.LevelDisplay != "86%" || rec.CivilNowDisplay != "15/02/2026 - 20:00" {
		t.Fatalf("display fields = %q %q", rec.LevelDisplay, rec.CivilNowDisplay)
	}
}

func TestGeneratorsSkipHiddenAndDegrade(t *testing.T) {
	p := NewPipeline(Options{})
	rows := []RawAssetRecord{
		{ID: 1, Level: 0.5, DisplayEnabled: false},
		{ID: 2, Level: 0.5},
		{ID: 3, Level: "broken", DisplayEnabled: "yes", UpdatedAt: "15/02/2026 19:50 UTC", Station: "Pátio Lapa"},
	}
	got := p.Generators(rows, testNow)
	if len(got) != 1 {
		t.Fatalf("expected only the displayed row, got %d", len(got))
	}
	rec := got[0]
	if rec.ID != "3" || rec.Name != "Gerador" {
		t.Fatalf("identity = %q %q", rec.ID, rec.Name)
	}
	if rec.Status != TierUnknown || rec.LevelPercent != nil || rec.LevelDisplay != "—" {
		t.Fatalf("unparsable level should be unknown: %+v", rec.PublicRecord)
	}
	if rec.LevelColor != TierUnknown.Color() {
		t.Fatalf("level_color = %s", rec.LevelColor)
	}
	if rec.Online || rec.ElapsedMinutes != nil || rec.UpdatedAt != nil {
		t.Fatalf("unparsable timestamp should be offline: %+v", rec.PublicRecord)
	}
	if rec.UpdatedDisplay == nil || *rec.UpdatedDisplay != "15/02/2026 19:50" {
		t.Fatalf("raw display should be kept without UTC: %v", rec.UpdatedDisplay)
	}
	if rec.Location != "Pátio Lapa" {
		t.Fatalf("local = %q", rec.Location)
	}
	if rec.CurrentVolume != nil || rec.AutonomyHours != nil {
		t.Fatal("volumes need a level and a capacity")
	}
}

func TestPublicRecordJSONRoundTrip(t *testing.T) {
	p := NewPipeline(Options{})
	rows := []RawAssetRecord{{
		ID:             "g",
		Level:          "33",
		DisplayEnabled: 1,
		Data:           map[string]any{"tanque": 100, "autonomia": 12.5},
		UpdatedAt:      "2026-02-15T19:58:30",
	}}
	rec := p.Generators(rows, testNow)[0]

	body, err := json.Marshal(rec.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded PublicRecord
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	checks := []struct {
		name      string
		got, want *float64
	}{
		{"nivel_percent", decoded.LevelPercent, rec.LevelPercent},
		{"volume_atual", decoded.CurrentVolume, rec.CurrentVolume},
		{"volume_para_completar", decoded.VolumeToFull, rec.VolumeToFull},
		{"litros_disponiveis", decoded.LitersAvailable, rec.LitersAvailable},
		{"autonomia_value", decoded.AutonomyHours, rec.AutonomyHours},
		{"ultima_diff_minutes", decoded.ElapsedMinutes, rec.ElapsedMinutes},
	}
	for _, c := range checks {
		if c.got == nil || c.want == nil || *c.got != *c.want {
			t.Errorf("%s changed across JSON: %v -> %v", c.name, deref(c.want), deref(c.got))
		}
	}
	if *decoded.VolumeToFull != 67 || *decoded.LitersAvailable != 67 {
		t.Fatalf("volume breakdown = %v %v", *decoded.VolumeToFull, *decoded.LitersAvailable)
	}

	var generic map[string]any
	if err := json.Unmarshal(body, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	if _, ok := generic["dados"]; ok {
		t.Fatal("public record must not expose dados")
	}
	if generic["maps_url"] != nil {
		t.Fatalf("maps_url should be null, got %v", generic["maps_url"])
	}
}

func TestLatestUpdate(t *testing.T) {
	if LatestUpdate(nil) != nil {
		t.Fatal("empty input should yield nil")
	}
	a := testNow.Add(-time.Hour)
	b := testNow.Add(-time.Minute)
	records := []Record{{UpdatedAt: &a}, {}, {UpdatedAt: &b}}
	got := LatestUpdate(records)
	if got == nil || !got.Equal(b) {
		t.Fatalf("LatestUpdate = %v, want %s", got, b)
	}
	if LatestUpdate([]Record{{}, {}}) != nil {
		t.Fatal("records without timestamps should yield nil")
	}
}

func TestLocomotives(t *testing.T) {
	p := NewPipeline(Options{})
	rows := []LocomotiveRow{
		{
			ID:             "7",
			Tag:            "LOC-01",
			Model:          "GT26",
			Base:           "Lapa",
			TankVolume:     "100",
			Level:          33.5,
			DisplayEnabled: true,
			UpdatedAt:      testNow.Add(2 * time.Minute).Format(time.RFC3339),
			PhotoURL:       "https://cdn.example/loco.jpg",
		},
		{
			ID:             "8",
			Model:          "U20C",
			Level:          nil,
			DisplayEnabled: true,
			CreatedAt:      "2026-02-15T10:00:00Z",
		},
		{ID: "9", Tag: "hidden", DisplayEnabled: false},
	}

	got := p.Locomotives(rows, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	first := got[0]
	if first.Name != "LOC-01" || first.Location != "Lapa" || first.Fuel != "—" {
		t.Fatalf("labels = %q %q %q", first.Name, first.Location, first.Fuel)
	}
	if first.LitersAvailable == nil || *first.LitersAvailable != 67 {
		t.Fatalf("locomotive liters should be ceil(volume to full), got %v", first.LitersAvailable)
	}
	if first.ElapsedMinutes == nil || *first.ElapsedMinutes != 0 || !first.Online {
		t.Fatalf("future timestamp should clamp to 0 min and be online: %+v", first.PublicRecord)
	}
	if first.PhotoURL == nil || *first.PhotoURL != "https://cdn.example/loco.jpg" {
		t.Fatalf("foto_url = %v", first.PhotoURL)
	}

	second := got[1]
	if second.Name != "U20C" || second.Location != "Base não informada" {
		t.Fatalf("defaults = %q %q", second.Name, second.Location)
	}
	if second.UpdatedAt == nil || second.Online {
		t.Fatalf("created_at should be used and be offline: %+v", second.PublicRecord)
	}
	if second.Status != TierUnknown {
		t.Fatalf("status = %s", second.Status)
	}
}

func TestElevators(t *testing.T) {
	p := NewPipeline(Options{})
	rows := []ElevatorRow{
		{
			ID:        "e1",
			Name:      "Elevador 1",
			Location:  `{"nome": "Plataforma 2", "rua": "Rua B", "cidade": "Suzano"}`,
			UpdatedAt: testNow.Add(-time.Minute),
			State:     "true",
		},
		{
			ID:       "e2",
			Location: "Acesso Norte",
			State:    0,
		},
	}
	got := p.Elevators(rows, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 elevators, got %d", len(got))
	}
	if got[0].Location != "Plataforma 2" || !got[0].Online || !got[0].Active || got[0].StateLabel != "ATIVADO" {
		t.Fatalf("first elevator = %+v", got[0])
	}
	if got[0].MapsURL == nil || *got[0].MapsURL != "https://www.google.com/maps/search/?api=1&query=Rua+B%2C+Suzano" {
		t.Fatalf("maps url = %v", got[0].MapsURL)
	}
	if got[1].Name != "Elevador" || got[1].Location != "Acesso Norte" || got[1].Online || got[1].StateLabel != "DESATIVADO" {
		t.Fatalf("second elevator = %+v", got[1])
	}
	if got[1].MapsURL == nil || *got[1].MapsURL != "https://www.google.com/maps/search/?api=1&query=Acesso+Norte" {
		t.Fatalf("label should be used for maps when no address: %v", got[1].MapsURL)
	}
}

func TestSampleGenerators(t *testing.T) {
	p := NewPipeline(Options{})
	got, err := p.SampleGenerators(testNow)
	if err != nil {
		t.Fatalf("SampleGenerators: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(got))
	}
	wantTiers := []Tier{TierSafe, TierModerate, TierAlert, TierCritical}
	for i, rec := range got {
		if rec.Status != wantTiers[i] {
			t.Errorf("sample %d tier = %s, want %s", i, rec.Status, wantTiers[i])
		}
		if rec.Online || rec.StatusLabel != "offline" {
			t.Errorf("sample %d should be offline", i)
		}
		if rec.UpdatedAt != nil {
			t.Errorf("sample %d should not count towards last refresh", i)
		}
	}
	if !got[2].CriticalFocus || got[2].LevelColor != TierCritical.Color() {
		t.Fatalf("22.8%% sample should be critical focus: %+v", got[2].PublicRecord)
	}
	if got[0].TankVolume != nil || got[0].CurrentVolume != nil || got[0].VolumeToFull != nil {
		t.Fatalf("samples carry no capacity: %+v", got[0].PublicRecord)
	}
	if got[0].LitersAvailable == nil || *got[0].LitersAvailable != 428 {
		t.Fatalf("sample litros_disponiveis = %v", got[0].LitersAvailable)
	}
}

package fleet

import (
	"errors"
	"strconv"
	"strings"
)

// Option is one entry of a form dropdown.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Bases are the yards a locomotive can be assigned to.
var Bases = []Option{
	{ID: "patio_calmon", Label: "Calmon Viana"},
	{ID: "patio_lapa", Label: "Lapa"},
	{ID: "patio_isp", Label: "Eng. São Paulo"},
}

// Fuels are the accepted fuel grades.
var Fuels = []Option{
	{ID: "diesel_s10", Label: "Diesel S10"},
	{ID: "diesel_s500", Label: "Diesel S500"},
}

// LocomotiveInput is a validated create or edit request.
type LocomotiveInput struct {
	Tag        string
	Model      string
	Base       string
	Fuel       string
	TankVolume int
	Level      int
}

// LocomotiveForm carries the raw form values of a create or edit request.
type LocomotiveForm struct {
	Tag        string
	Model      string
	Base       string
	Fuel       string
	TankVolume string
	Level      string
	HasPhoto   bool
}

var (
	ErrMissingFields    = errors.New("Preencha tag, modelo, base, combustível e volume do tanque.")
	ErrMissingCreate    = errors.New("Preencha foto, tag, modelo, base, combustível e volume do tanque.")
	ErrInvalidBase      = errors.New("Base inválida. Se necessário, cadastre a opção na lista de bases do código.")
	ErrInvalidFuel      = errors.New("Combustível inválido. Use apenas Diesel S10 ou Diesel S500.")
	ErrPhotoRequired    = errors.New("A foto da locomotiva é obrigatória.")
	ErrTankNotInteger   = errors.New("Volume do tanque deve ser um número inteiro maior que zero.")
	ErrLevelNotInteger  = errors.New("Nível atual deve ser um número inteiro entre 0 e 100.")
	ErrTankNotPositive  = errors.New("Volume do tanque deve ser maior que zero.")
	ErrLevelOutOfBounds = errors.New("Nível atual deve estar entre 0 e 100.")
)

// Validate checks a form and converts it to an input. A photo is required
// only when creating.
func (f LocomotiveForm) Validate(creating bool) (LocomotiveInput, error) {
	tag := strings.TrimSpace(f.Tag)
	model := strings.TrimSpace(f.Model)
	base := strings.TrimSpace(f.Base)
	fuel := strings.TrimSpace(f.Fuel)
	tankRaw := strings.TrimSpace(f.TankVolume)
	levelRaw := strings.TrimSpace(f.Level)
	if levelRaw == "" {
		levelRaw = "0"
	}

	if tag == "" || model == "" || base == "" || fuel == "" || tankRaw == "" {
		if creating {
			return LocomotiveInput{}, ErrMissingCreate
		}
		return LocomotiveInput{}, ErrMissingFields
	}
	if !hasLabel(Bases, base) {
		return LocomotiveInput{}, ErrInvalidBase
	}
	if !hasLabel(Fuels, fuel) {
		return LocomotiveInput{}, ErrInvalidFuel
	}
	if creating && !f.HasPhoto {
		return LocomotiveInput{}, ErrPhotoRequired
	}

	tank, ok := parseDigits(tankRaw)
	if !ok {
		return LocomotiveInput{}, ErrTankNotInteger
	}
	level, ok := parseDigits(levelRaw)
	if !ok {
		return LocomotiveInput{}, ErrLevelNotInteger
	}
	if tank <= 0 {
		return LocomotiveInput{}, ErrTankNotPositive
	}
	if level > 100 {
		return LocomotiveInput{}, ErrLevelOutOfBounds
	}

	return LocomotiveInput{
		Tag:        tag,
		Model:      model,
		Base:       base,
		Fuel:       fuel,
		TankVolume: tank,
		Level:      level,
	}, nil
}

func hasLabel(options []Option, label string) bool {
	for _, o := range options {
		if o.Label == label {
			return true
		}
	}
	return false
}

// parseDigits accepts only unsigned decimal digits.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

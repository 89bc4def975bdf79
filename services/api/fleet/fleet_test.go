package fleet

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/trivia-trens/trivia-monitora/services/api/levels"
)

func validForm() LocomotiveForm {
	return LocomotiveForm{
		Tag:        " LOC-01 ",
		Model:      "GT26",
		Base:       "Lapa",
		Fuel:       "Diesel S10",
		TankVolume: "4000",
		Level:      "55",
		HasPhoto:   true,
	}
}

func TestValidate(t *testing.T) {
	in, err := validForm().Validate(true)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := LocomotiveInput{Tag: "LOC-01", Model: "GT26", Base: "Lapa", Fuel: "Diesel S10", TankVolume: 4000, Level: 55}
	if in != want {
		t.Fatalf("got %+v, want %+v", in, want)
	}

	f := validForm()
	f.Level = ""
	in, err = f.Validate(false)
	if err != nil || in.Level != 0 {
		t.Fatalf("blank level should default to 0: %+v %v", in, err)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*LocomotiveForm)
		creating bool
		want     error
	}{
		{"missing tag on edit", func(f *LocomotiveForm) { f.Tag = "  " }, false, ErrMissingFields},
		{"missing tank on create", func(f *LocomotiveForm) { f.TankVolume = "" }, true, ErrMissingCreate},
		{"unknown base", func(f *LocomotiveForm) { f.Base = "Mooca" }, false, ErrInvalidBase},
		{"unknown fuel", func(f *LocomotiveForm) { f.Fuel = "Gasolina" }, false, ErrInvalidFuel},
		{"photo required", func(f *LocomotiveForm) { f.HasPhoto = false }, true, ErrPhotoRequired},
		{"decimal tank", func(f *LocomotiveForm) { f.TankVolume = "12.5" }, false, ErrTankNotInteger},
		{"negative level", func(f *LocomotiveForm) { f.Level = "-1" }, false, ErrLevelNotInteger},
		{"zero tank", func(f *LocomotiveForm) { f.TankVolume = "0" }, false, ErrTankNotPositive},
		{"level over 100", func(f *LocomotiveForm) { f.Level = "101" }, false, ErrLevelOutOfBounds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mutate(&f)
			if _, err := f.Validate(tc.creating); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	f := validForm()
	f.HasPhoto = false
	if _, err := f.Validate(false); err != nil {
		t.Fatalf("edit without photo should pass: %v", err)
	}
}

func fleetRows() []levels.LocomotiveRow {
	return []levels.LocomotiveRow{
		{ID: "1", Tag: "LOC-03", Model: "gt26", Base: "Lapa", Fuel: "Diesel S10", Level: "80", TankVolume: "3000"},
		{ID: "2", Tag: "LOC-01", Model: "U20C", Base: "Calmon Viana", Fuel: "Diesel S500", Level: 0.25},
		{ID: "3", Tag: "LOC-02", Model: "C30", Base: "Lapa", Fuel: "Diesel S10", PhotoURL: "https://cdn/x.jpg"},
	}
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestListSortAndSearch(t *testing.T) {
	page := List(fleetRows(), ListQuery{})
	if page.SortBy != "modelo" || page.SortDir != "asc" {
		t.Fatalf("defaults = %s %s", page.SortBy, page.SortDir)
	}
	if got := ids(page.Items); !reflect.DeepEqual(got, []string{"3", "1", "2"}) {
		t.Fatalf("modelo asc = %v", got)
	}

	page = List(fleetRows(), ListQuery{SortBy: "NIVEL", SortDir: "desc"})
	if got := ids(page.Items); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("nivel desc = %v", got)
	}
	if page.Items[1].Level == nil || *page.Items[1].Level != 25 || page.Items[1].LevelDisplay != "25%" {
		t.Fatalf("fraction level should normalize: %+v", page.Items[1])
	}
	if page.Items[2].LevelDisplay != "—" || page.Items[2].PhotoURL == nil {
		t.Fatalf("third item = %+v", page.Items[2])
	}

	page = List(fleetRows(), ListQuery{Search: " lapa ", SortBy: "tag", SortDir: "sideways"})
	if got := ids(page.Items); !reflect.DeepEqual(got, []string{"3", "1"}) || page.Total != 2 || page.SortDir != "asc" {
		t.Fatalf("search = %v total %d dir %s", got, page.Total, page.SortDir)
	}
}

func TestListPagination(t *testing.T) {
	rows := make([]levels.LocomotiveRow, 0, 75)
	for i := 0; i < 75; i++ {
		rows = append(rows, levels.LocomotiveRow{ID: strconv.Itoa(i), Tag: "T" + strconv.Itoa(i), Model: "M"})
	}

	page := List(rows, ListQuery{Page: 5})
	if page.TotalPages != 8 || page.Page != 5 || len(page.Items) != 10 {
		t.Fatalf("page 5 = %d/%d with %d items", page.Page, page.TotalPages, len(page.Items))
	}
	if !reflect.DeepEqual(page.PageNumbers, []int{3, 4, 5, 6, 7}) {
		t.Fatalf("page numbers = %v", page.PageNumbers)
	}

	page = List(rows, ListQuery{Page: 99})
	if page.Page != 8 || len(page.Items) != 5 || !reflect.DeepEqual(page.PageNumbers, []int{6, 7, 8}) {
		t.Fatalf("clamped page = %d items %d numbers %v", page.Page, len(page.Items), page.PageNumbers)
	}

	page = List(nil, ListQuery{Page: -3})
	if page.Page != 1 || page.TotalPages != 1 || len(page.Items) != 0 || !reflect.DeepEqual(page.PageNumbers, []int{1}) {
		t.Fatalf("empty listing = %+v", page)
	}
}

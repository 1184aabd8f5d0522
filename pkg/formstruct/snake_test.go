package formstruct

import "testing"

func TestToSnakeCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Soil pH #2", "soil_ph_number_2"},
		{"Numéro", "numero"},
		{" Plot  ID ", "plot_id"},
		{"Count", "count"},
		{"lat. (deg)", "lat_deg"},
		{"---", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := ToSnakeCase(c.in); got != c.want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToSnakeCaseIdempotent(t *testing.T) {
	inputs := []string{"Soil pH #2", "Numéro", "Plot ID", "already_snake", "a  b   c"}
	for _, in := range inputs {
		once := ToSnakeCase(in)
		if twice := ToSnakeCase(once); twice != once {
			t.Errorf("ToSnakeCase not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestJoinClean(t *testing.T) {
	got := joinClean([]string{"Oak", "", "  ", "tree  ", " tall"})
	if got != "Oak tree tall" {
		t.Errorf("joinClean = %q, want %q", got, "Oak tree tall")
	}
	if got := joinClean(nil); got != "" {
		t.Errorf("joinClean(nil) = %q, want empty", got)
	}
}

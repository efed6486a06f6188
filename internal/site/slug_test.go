package site

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Doctors", "doctors"},
		{"spaces", "Patient Information", "patient-information"},
		{"punctuation", "Contact Us!", "contact-us"},
		{"runs collapse", "A  --  B", "a-b"},
		{"leading trailing trimmed", "  -About- ", "about"},
		{"digits kept", "Top 10 Services", "top-10-services"},
		{"accents folded", "Café Menü", "cafe-menu"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Slugify(c.in); got != c.want {
				t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Patient Information", "Our Doctors", "FAQ & Help", "Über Uns"}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	for range 5 {
		if Slugify("Patient Information") != "patient-information" {
			t.Fatal("slug derivation must be stable across calls")
		}
	}
}

package language

import "testing"

func TestToISO2(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"auto":     "",
		"AUTO":     "",
		"en":       "en",
		"EN":       "en",
		"eng":      "en",
		"english":  "en",
		"English":  "en",
		"fre":      "fr",
		"fra":      "fr",
		"ger":      "de",
		"chi":      "zh",
		"japanese": "ja",
		// Unknown 2-letter codes pass through for the engine to judge.
		"xx": "xx",
		// Anything else unrecognized falls back to autodetect.
		"klingon": "",
		"xyz":     "",
	}
	for input, want := range cases {
		if got := ToISO2(input); got != want {
			t.Errorf("ToISO2(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"":        "Auto",
		"auto":    "Auto",
		"en":      "English",
		"deu":     "German",
		"spanish": "Spanish",
		"xx":      "XX",
	}
	for input, want := range cases {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

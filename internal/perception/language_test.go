package perception

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "find me an apartment in Brooklyn", "en"},
		{"spanish", "hola, necesito ayuda para buscar apartamento", "es"},
		{"spanish below threshold", "hola, I need an apartment", "en"},
		{"chinese", "你好，我需要帮助找公寓", "zh"},
		{"bengali", "আমি ব্রুকলিনে অ্যাপার্টমেন্ট খুঁজছি", "bn"},
		{"empty defaults english", "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectLanguages(t *testing.T) {
	got := DetectLanguages("I need ayuda finding 公寓")
	want := map[string]bool{"en": true, "es": true, "zh": true}
	if len(got) != len(want) {
		t.Fatalf("DetectLanguages = %v, want en/es/zh", got)
	}
	for _, lang := range got {
		if !want[lang] {
			t.Errorf("unexpected language %q", lang)
		}
	}
}

func TestDetectLanguagesDefault(t *testing.T) {
	got := DetectLanguages("12345")
	if len(got) != 1 || got[0] != "en" {
		t.Errorf("DetectLanguages = %v, want [en]", got)
	}
}

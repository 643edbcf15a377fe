package lexicon

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits on punctuation",
			text: "Moody, FOGGY forest!",
			want: []string{"moody", "foggy", "forest"},
		},
		{
			name: "keeps hyphenated compounds",
			text: "sun-drenched coastline",
			want: []string{"sun-drenched", "coastline"},
		},
		{
			name: "trims stray hyphens",
			text: "--dark- -light",
			want: []string{"dark", "light"},
		},
		{
			name: "digits survive",
			text: "route 66 sunset",
			want: []string{"route", "66", "sunset"},
		},
		{
			name: "empty input",
			text: "   ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPosBias(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  float64
	}{
		{name: "adjectival ful", token: "peaceful", want: adjectivalBias},
		{name: "adjectival y", token: "moody", want: adjectivalBias},
		{name: "nominal scape", token: "cityscape", want: nominalBias},
		{name: "nominal tion", token: "composition", want: nominalBias},
		{name: "suffix rule wins over hyphen", token: "sun-sleepy", want: adjectivalBias},
		{name: "plain hyphen", token: "blue-green", want: hyphenBias},
		{name: "long plain token", token: "mountain", want: longTokenBias},
		{name: "short plain token", token: "sea", want: 1.0},
		{name: "suffix equal to token is no match", token: "ly", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PosBias(tt.token); got != tt.want {
				t.Errorf("PosBias(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestDomainBias(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  float64
	}{
		{name: "color word", token: "crimson", want: colorBias},
		{name: "mood word", token: "serene", want: moodBias},
		{name: "composition word", token: "silhouette", want: compositionBias},
		{name: "plain word", token: "forest", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DomainBias(tt.token); got != tt.want {
				t.Errorf("DomainBias(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestStopwords(t *testing.T) {
	for _, word := range []string{"the", "with", "image", "photo"} {
		if !IsStopword(word) {
			t.Errorf("IsStopword(%q) = false, want true", word)
		}
	}
	if IsStopword("forest") {
		t.Error("IsStopword(forest) = true, want false")
	}
}

package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	voice   string   // Default synthesis voice
	words   []string // Full word forms (e.g. "khmer")
}

// Voices are the service's neural defaults for each language. Khmer leads
// because it is the project's primary dub target.
var languages = []entry{
	{"km", "khm", "", "Khmer", "km-KH-SreymomNeural", []string{"khmer", "cambodian"}},
	{"en", "eng", "", "English", "en-US-AriaNeural", []string{"english"}},
	{"es", "spa", "", "Spanish", "es-ES-ElviraNeural", []string{"spanish"}},
	{"fr", "fra", "fre", "French", "fr-FR-DeniseNeural", []string{"french"}},
	{"de", "deu", "ger", "German", "de-DE-KatjaNeural", []string{"german"}},
	{"it", "ita", "", "Italian", "it-IT-ElsaNeural", []string{"italian"}},
	{"pt", "por", "", "Portuguese", "pt-BR-FranciscaNeural", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", "ja-JP-NanamiNeural", []string{"japanese"}},
	{"ko", "kor", "", "Korean", "ko-KR-SunHiNeural", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", "zh-CN-XiaoxiaoNeural", []string{"chinese", "mandarin"}},
	{"ru", "rus", "", "Russian", "ru-RU-SvetlanaNeural", []string{"russian"}},
	{"ar", "ara", "", "Arabic", "ar-SA-ZariyahNeural", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", "hi-IN-SwaraNeural", []string{"hindi"}},
	{"th", "tha", "", "Thai", "th-TH-PremwadeeNeural", []string{"thai"}},
	{"vi", "vie", "", "Vietnamese", "vi-VN-HoaiMyNeural", []string{"vietnamese"}},
	{"id", "ind", "", "Indonesian", "id-ID-GadisNeural", []string{"indonesian"}},
	{"nl", "nld", "dut", "Dutch", "nl-NL-ColetteNeural", []string{"dutch"}},
	{"pl", "pol", "", "Polish", "pl-PL-ZofiaNeural", []string{"polish"}},
	{"sv", "swe", "", "Swedish", "sv-SE-SofieNeural", []string{"swedish"}},
	{"fi", "fin", "", "Finnish", "fi-FI-NooraNeural", []string{"finnish"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Known reports whether the code resolves to a language in the table.
func Known(code string) bool {
	return lookup(code) != nil
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input; unrecognized word-like input is
// title-cased, unrecognized codes are uppercased.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	if len(trimmed) > 3 {
		return cases.Title(xlang.English).String(strings.ToLower(trimmed))
	}
	return strings.ToUpper(trimmed)
}

// DefaultVoice returns the default synthesis voice for a language code, or
// empty when the language has no known voice.
func DefaultVoice(code string) string {
	if e := lookup(code); e != nil {
		return e.voice
	}
	return ""
}

// NormalizeList deduplicates and normalizes a list of language codes to ISO 639-1.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, lang := range codes {
		trimmed := strings.ToLower(strings.TrimSpace(lang))
		if trimmed == "" {
			continue
		}
		if len(trimmed) > 2 {
			if mapped := ToISO2(trimmed); mapped != "" {
				trimmed = mapped
			}
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

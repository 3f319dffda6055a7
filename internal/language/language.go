// ABOUTME: Supported learning languages
// ABOUTME: Static language table, lookups and asset-id language derivation
package language

import (
	"strings"
)

// Direction is the writing direction of a script
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// Language describes one language offered by the app
type Language struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	NativeName string    `json:"native_name"`
	Direction  Direction `json:"direction"`
	Locale     string    `json:"locale"` // BCP-47 tag used for speech recognition
}

var supported = []Language{
	{Code: "en", Name: "English", NativeName: "English", Direction: LTR, Locale: "en-US"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Direction: LTR, Locale: "ja-JP"},
	{Code: "fr", Name: "French", NativeName: "Français", Direction: LTR, Locale: "fr-FR"},
	{Code: "es", Name: "Spanish", NativeName: "Español", Direction: LTR, Locale: "es-ES"},
	{Code: "de", Name: "German", NativeName: "Deutsch", Direction: LTR, Locale: "de-DE"},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Direction: LTR, Locale: "it-IT"},
	{Code: "zh", Name: "Chinese (Simplified)", NativeName: "简体中文", Direction: LTR, Locale: "zh-CN"},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Direction: LTR, Locale: "ko-KR"},
	{Code: "ru", Name: "Russian", NativeName: "Русский", Direction: LTR, Locale: "ru-RU"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Direction: LTR, Locale: "pt-BR"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية", Direction: RTL, Locale: "ar-SA"},
}

// All returns the supported languages in display order
func All() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// Lookup finds a language by code or locale ("ja", "ja-JP", "JA_jp")
func Lookup(code string) (Language, bool) {
	code = strings.ToLower(strings.ReplaceAll(code, "_", "-"))
	base, _, _ := strings.Cut(code, "-")
	for _, l := range supported {
		if l.Code == base {
			return l, true
		}
	}
	return Language{}, false
}

// FromAssetID returns the language code of an asset laid out as <lang>/<name>,
// or "" when the first path segment is not a supported language
func FromAssetID(id string) string {
	first, _, found := strings.Cut(strings.TrimPrefix(id, "/"), "/")
	if !found {
		return ""
	}
	if l, ok := Lookup(first); ok {
		return l.Code
	}
	return ""
}

// Locales returns the speech-recognition locale of every supported language
func Locales() []string {
	out := make([]string, len(supported))
	for i, l := range supported {
		out[i] = l.Locale
	}
	return out
}

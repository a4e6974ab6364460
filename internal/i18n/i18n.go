package i18n

import "strings"

// Default language for the Dutch market; English served on request.
const defaultLang = "nl"

var translations = map[string]map[string]string{
	"nl": {
		"quote_not_found":         "Deze offerte is niet gevonden. Controleer de link of neem contact op met de afzender.",
		"signing_link_expired":    "De ondertekentermijn van deze offerte is verstreken.",
		"quote_already_finalized": "Deze offerte is al afgehandeld.",
		"too_many_requests":       "Te veel verzoeken. Probeer het later opnieuw.",
		"validation_failed":       "Sommige velden zijn niet correct ingevuld.",
		"invalid_json":            "Het verzoek kon niet worden gelezen.",
		"internal_error":          "Er is iets misgegaan. Probeer het later opnieuw.",
		"conflict":                "Deze offerte is zojuist door iemand anders afgehandeld.",
		"required":                "Verplicht",
		"too_long":                "Te lang",
		"must_be_accepted":        "Moet geaccepteerd worden",
		"invalid_email":           "Ongeldig e-mailadres",
	},
	"en": {
		"quote_not_found":         "This quote could not be found. Check the link or contact the sender.",
		"signing_link_expired":    "The signing window for this quote has expired.",
		"quote_already_finalized": "This quote has already been finalized.",
		"too_many_requests":       "Too many requests. Please try again later.",
		"validation_failed":       "Some fields are missing or invalid.",
		"invalid_json":            "The request body could not be read.",
		"internal_error":          "Something went wrong. Please try again later.",
		"conflict":                "This quote was just finalized by someone else.",
		"required":                "Required",
		"too_long":                "Too long",
		"must_be_accepted":        "Must be accepted",
		"invalid_email":           "Invalid email address",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
// Unknown or empty input falls back to the default.
func DetectLanguage(acceptLanguage string) string {
	s := strings.ToLower(strings.TrimSpace(acceptLanguage))
	for _, part := range strings.Split(s, ",") {
		code := strings.SplitN(strings.TrimSpace(part), ";", 2)[0]
		if i := strings.Index(code, "-"); i > 0 {
			code = code[:i]
		}
		if _, ok := translations[code]; ok {
			return code
		}
	}
	return defaultLang
}

// T translates a message code. Unknown languages fall back to the default
// language; unknown codes fall back to the code itself so a missing entry is
// visible instead of silent.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if msg, ok := m[code]; ok {
			return msg
		}
	}
	if msg, ok := translations[defaultLang][code]; ok {
		return msg
	}
	return code
}

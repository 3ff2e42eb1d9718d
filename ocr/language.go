package ocr

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Languages is an ordered list of Tesseract language codes (ISO 639-2,
// with Tesseract's script suffixes such as "chi_sim").
type Languages []string

// DefaultLanguages is the bilingual dictionary used when no hint is given.
var DefaultLanguages = Languages{"rus", "eng"}

// String joins the codes the way Tesseract's -l flag expects ("rus+eng").
func (l Languages) String() string {
	return strings.Join(l, "+")
}

// tesseractScripts covers languages whose Tesseract model is split by script
var tesseractScripts = map[string]string{
	"zh-Hans": "chi_sim",
	"zh-Hant": "chi_tra",
	"sr-Latn": "srp_latn",
	"uz-Cyrl": "uzb_cyrl",
	"az-Cyrl": "aze_cyrl",
}

// ParseLanguages turns a language hint into Tesseract codes. The hint may
// use "+", "," or spaces as separators and mix Tesseract codes ("eng"),
// ISO 639-1 codes ("ru") and BCP 47 tags ("zh-Hant"). Duplicates are
// dropped. An empty hint yields DefaultLanguages.
func ParseLanguages(hint string) (Languages, error) {
	fields := strings.FieldsFunc(hint, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return append(Languages(nil), DefaultLanguages...), nil
	}

	seen := make(map[string]bool, len(fields))
	langs := make(Languages, 0, len(fields))
	for _, field := range fields {
		code, err := tesseractCode(field)
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		langs = append(langs, code)
	}
	return langs, nil
}

func tesseractCode(field string) (string, error) {
	lower := strings.ToLower(field)

	// Already a Tesseract model name
	if strings.Contains(lower, "_") || lower == "osd" || lower == "equ" {
		return lower, nil
	}

	tag, err := language.Parse(field)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", field, err)
	}

	base, _ := tag.Base()
	script, conf := tag.Script()
	if conf != language.No {
		if code, ok := tesseractScripts[base.String()+"-"+script.String()]; ok {
			return code, nil
		}
	}
	if base.String() == "zh" {
		return "chi_sim", nil
	}

	return base.ISO3(), nil
}

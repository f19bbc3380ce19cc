// Package codes derives the short codes that make up unit identifiers.
//
// A unit identifier has the form DLR-CAT-PRD-NNNN, for example
// ACM-MOB-SMA-0001: three letters of the dealer name, the category code,
// three letters of the model (or product name) and a per-key counter.
package codes

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonCodeRE = regexp.MustCompile(`[^A-Z0-9]`)

// FallbackProductCode is used when a product has no usable name or model.
const FallbackProductCode = "XXX"

// codeLen is the length of dealer and product fragments.
const codeLen = 3

// ToCode uppercases text with full case mapping, so ß becomes SS and the
// ligature ﬁ becomes FI, then drops every character outside A-Z and 0-9.
func ToCode(text string) string {
	// A Caser keeps state and is not shared between goroutines.
	return nonCodeRE.ReplaceAllString(cases.Upper(language.Und).String(text), "")
}

// DealerCode returns up to three code characters of the dealer name.
// An empty result is allowed and produces keys like "-MOB-SMA".
func DealerCode(name string) string {
	return truncate(ToCode(name), codeLen)
}

// ProductCode returns up to three code characters of a model or product name,
// or FallbackProductCode when nothing usable remains.
func ProductCode(nameOrModel string) string {
	code := truncate(ToCode(nameOrModel), codeLen)
	if code == "" {
		return FallbackProductCode
	}
	return code
}

// CategoryCode maps free-form category text to MOB, ACC or OTH.
func CategoryCode(category string) string {
	return ParseCategory(category).Code()
}

// Key joins the three fragments of a counter key.
func Key(dealerCode, categoryCode, productCode string) string {
	return dealerCode + "-" + categoryCode + "-" + productCode
}

// UnitID appends the zero-padded counter to a key. Counters above 9999 keep all digits.
func UnitID(key string, counter int64) string {
	return fmt.Sprintf("%s-%04d", key, counter)
}

// MobileKey builds the counter key of a mobile line. The model wins over the
// product name when it has any non-space text.
func MobileKey(dealerName, model, productName string) string {
	source := productName
	if strings.TrimSpace(model) != "" {
		source = model
	}
	return Key(DealerCode(dealerName), CategoryMobile.Code(), ProductCode(source))
}

// AccessoryKey builds the counter key (and group prefix) of an accessory line.
func AccessoryKey(dealerName, productName string) string {
	return Key(DealerCode(dealerName), CategoryAccessory.Code(), ProductCode(productName))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

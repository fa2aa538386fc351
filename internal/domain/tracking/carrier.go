package tracking

import "strings"

// carrierDisplayNames maps fulfillment-platform carrier codes to the labels
// shown to customers. Keys are the base carrier; service-level codes such as
// "ups_ground" fall back to their prefix.
var carrierDisplayNames = map[string]string{
	"ups":         "UPS",
	"usps":        "USPS",
	"fedex":       "FedEx",
	"dhl":         "DHL",
	"dhl_express": "DHL Express",
	"ontrac":      "OnTrac",
	"lasership":   "LaserShip",
	"canada_post": "Canada Post",
	"royal_mail":  "Royal Mail",
	"stamps_com":  "USPS",
}

// CarrierDisplayName returns a human-readable carrier label. Unknown codes are
// returned title-cased rather than failing, so the storefront always has
// something to show.
func CarrierDisplayName(code string) string {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return ""
	}

	if name, ok := carrierDisplayNames[normalized]; ok {
		return name
	}

	// Service-level code: "ups_ground" -> "ups".
	if base, _, found := strings.Cut(normalized, "_"); found {
		if name, ok := carrierDisplayNames[base]; ok {
			return name
		}
	}

	return titleizeCarrier(normalized)
}

func titleizeCarrier(code string) string {
	words := strings.Split(strings.ReplaceAll(code, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// defaultAddress is used when no location fragment can be extracted
// from the text.
const defaultAddress = "Specified Location"

// categoryRule maps keyword sets to a category. Rules are evaluated in
// order; the first match wins. Keyword sets include common Hindi terms
// because a large share of voice transcriptions arrive in Hindi.
type categoryRule struct {
	category domain.Category
	keywords []string
}

var categoryRules = []categoryRule{
	{domain.CategorySanitation, []string{"garbage", "कचरा", "waste", "trash", "sanitation", "सफाई", "clean", "dustbin", "डस्टबिन"}},
	{domain.CategoryWater, []string{"water", "पानी", "leak", "pipe", "tap", "drainage", "नाली", "sewer", "सीवर", "flood", "बाढ़"}},
	{domain.CategoryElectricity, []string{"electricity", "बिजली", "power", "light", "streetlight", "स्ट्रीटलाइट", "bulb", "बल्ब", "wire", "तार", "electric"}},
	{domain.CategoryRoads, []string{"गड्ढा", "pothole", "road", "street", "गली", "सड़क", "transport", "यातायात", "traffic", "signal", "bus", "बस"}},
	{domain.CategoryHealth, []string{"health", "स्वास्थ्य", "safety", "सुरक्षा", "hospital", "अस्पताल", "clinic", "क्लिनिक", "medical", "चिकित्सा"}},
	{domain.CategoryEnvironment, []string{"park", "पार्क", "garden", "बगीचा", "tree", "पेड़", "environment", "पर्यावरण", "pollution", "प्रदूषण"}},
	{domain.CategoryBuilding, []string{"building", "भवन", "infrastructure", "construction", "निर्माण", "bridge", "पुल", "wall", "दीवार"}},
	{domain.CategoryTaxes, []string{"tax", "कर", "document", "दस्तावेज", "certificate", "प्रमाणपत्र", "license", "लाइसेंस", "permit", "अनुमति"}},
	{domain.CategoryEmergency, []string{"emergency", "आपातकाल", "fire", "आग", "police", "पुलिस", "ambulance", "एम्बुलेंस", "rescue", "बचाव"}},
	{domain.CategoryAnimalCare, []string{"animal", "जानवर", "dog", "कुत्ता", "stray", "आवारा", "pet", "पालतू", "veterinary", "पशु"}},
}

var sectorPattern = regexp.MustCompile(`(?i)(?:सेक्टर|sector)\s*(\d+)`)

// Fallback performs the deterministic rule-based classification used
// whenever the remote provider cannot. Same text in, same result out.
// Urgency is always medium; the fallback does not attempt severity
// inference.
func Fallback(text string) Result {
	return fallbackWithHint(text, nil)
}

func fallbackWithHint(text string, hint *domain.Location) Result {
	lower := strings.ToLower(text)

	category := domain.CategoryOther
	for _, rule := range categoryRules {
		if containsAny(text, lower, rule.keywords) {
			category = rule.category
			break
		}
	}

	address := extractAddress(text, lower)
	if address == defaultAddress && hint != nil {
		address = coordinateAddress(hint)
	}
	title := buildTitle(category, text, lower, address)
	description := fmt.Sprintf(
		"Issue reported in %s. This %s problem requires attention from authorities.",
		address, strings.ToLower(string(category)))

	return Result{
		Category:    category,
		Title:       title,
		Description: description,
		Address:     address,
		Urgency:     domain.UrgencyMedium,
		Source:      SourceFallback,
	}
}

// coordinateAddress renders reported coordinates as a coarse address
// when the text itself names no place.
func coordinateAddress(loc *domain.Location) string {
	return fmt.Sprintf("%.3f, %.3f", loc.Latitude, loc.Longitude)
}

func containsAny(text, lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) || strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// extractAddress pulls the best coarse location token out of the text.
func extractAddress(text, lower string) string {
	if m := sectorPattern.FindStringSubmatch(text); m != nil {
		return "Sector " + m[1]
	}
	if strings.Contains(text, "सेक्टर") || strings.Contains(lower, "sector") {
		return "Sector Area"
	}
	switch {
	case containsAny(text, lower, []string{"street", "गली", "road", "सड़क", "lane"}):
		return "Street/Road"
	case containsAny(text, lower, []string{"park", "पार्क", "garden", "बगीचा"}):
		return "Park/Garden"
	case containsAny(text, lower, []string{"market", "बाजार", "shopping", "शॉपिंग"}):
		return "Market Area"
	case containsAny(text, lower, []string{"hospital", "अस्पताल", "clinic", "क्लिनिक"}):
		return "Healthcare Facility"
	}
	return defaultAddress
}

func buildTitle(category domain.Category, text, lower, address string) string {
	switch {
	case strings.Contains(text, "गड्ढा") || strings.Contains(lower, "pothole"):
		return "Pothole in " + address
	case strings.Contains(lower, "garbage") || strings.Contains(text, "कचरा"):
		return "Garbage Issue in " + address
	case strings.Contains(lower, "water") || strings.Contains(text, "पानी"):
		return "Water Problem in " + address
	case strings.Contains(lower, "electricity") || strings.Contains(text, "बिजली"):
		return "Electrical Issue in " + address
	case strings.Contains(lower, "streetlight") || strings.Contains(text, "स्ट्रीटलाइट"):
		return "Streetlight Problem in " + address
	case strings.Contains(lower, "drainage") || strings.Contains(text, "नाली"):
		return "Drainage Issue in " + address
	}
	return fmt.Sprintf("%s Issue in %s", category, address)
}

package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

var (
	manualHosts = []string{"manualslib.com", "manualzz.com", "manualsonline.com", "manua.ls", "charm.li", "alldata.com"}
	videoHosts  = []string{"youtube.com", "youtu.be", "vimeo.com"}
	forumHosts  = []string{"reddit.com", "hvac-talk.com", "bobistheoilguy.com", "terrylove.com", "eevblog.com", "applianceblog.com", "outdoorpowerequipmentforum.com", "stackexchange.com"}
	partsHosts  = []string{"rockauto.com", "partselect.com", "appliancepartspros.com", "amazon.com", "ebay.com", "supplyhouse.com", "partstree.com", "jackssmallengines.com", "digikey.com"}

	forumMarkers  = []string{"posted by", "reply #", "replied", "joined:", "thread starter", "quote from"}
	manualMarkers = []string{"service manual", "owner's manual", "owners manual", "repair manual", "table of contents"}
	partsMarkers  = []string{"add to cart", "in stock", "part number:", "ships in"}

	// Part number candidates: WR57X10032, W10295370A, 44300-TVA-A01, DC97-16350.
	// isPartNumber filters out plain words and numbers.
	partNumberPattern = regexp.MustCompile(`\b[A-Z0-9][A-Z0-9-]{4,}[A-Z0-9]\b`)

	torquePattern = regexp.MustCompile(
		`(?i)\b\d+(?:\.\d+)?\s*(?:ft[-\s.]?lbs?|lb[-\s.]?ft|in[-\s.]?lbs?|lb[-\s.]?in|n[-\s.]?m|newton[-\s]?met(?:er|re)s?|kgf?[-\s.]?m)\b|\btorque\s+(?:to|spec(?:ification)?s?)\b`)
)

// classifyContent assigns a coarse content type from domain and keyword heuristics.
// Domain matches win over text markers.
func classifyContent(pageURL, text string) domain.ContentType {
	host := domain.HostOf(pageURL)
	switch {
	case hostIn(host, videoHosts):
		return domain.ContentTypeVideoTranscript
	case hostIn(host, manualHosts):
		return domain.ContentTypeManual
	case hostIn(host, forumHosts), strings.Contains(host, "forum"):
		return domain.ContentTypeForum
	case hostIn(host, partsHosts):
		return domain.ContentTypePartsCatalog
	}

	lowerURL := strings.ToLower(pageURL)
	if strings.HasSuffix(lowerURL, ".pdf") || strings.Contains(lowerURL, "/manual") {
		return domain.ContentTypeManual
	}

	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, forumMarkers):
		return domain.ContentTypeForum
	case containsAny(lower, manualMarkers):
		return domain.ContentTypeManual
	case containsAny(lower, partsMarkers):
		return domain.ContentTypePartsCatalog
	default:
		return domain.ContentTypeArticle
	}
}

// extractionMetadata computes the auxiliary flags for extracted text.
// hasImages comes from the raw markup, which is gone by this point.
func extractionMetadata(text string, hasImages bool) domain.ExtractionMetadata {
	return domain.ExtractionMetadata{
		WordCount:      len(strings.Fields(text)),
		HasPartNumbers: hasPartNumber(text),
		HasTorqueSpecs: torquePattern.MatchString(text),
		HasImages:      hasImages,
	}
}

// hasPartNumber reports whether text holds an upper-case token mixing
// letters with at least three digits.
func hasPartNumber(text string) bool {
	for _, tok := range partNumberPattern.FindAllString(text, -1) {
		var letters, digits int
		for _, r := range tok {
			switch {
			case r >= 'A' && r <= 'Z':
				letters++
			case r >= '0' && r <= '9':
				digits++
			}
		}
		if letters > 0 && digits >= 3 {
			return true
		}
	}
	return false
}

func hostIn(host string, hosts []string) bool {
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

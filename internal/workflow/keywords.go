package workflow

import "strings"

// productKeywords short-circuits the conversation classifier: a message
// containing any of these is treated as a product search without an LLM call.
// English and French are covered so detection is language-independent.
var productKeywords = []string{
	// products
	"laptop", "phone", "smartphone", "dress", "robe", "shoes", "chaussures",
	"headphones", "écouteurs", "tablet", "tablette", "watch", "montre",
	"computer", "pc", "ordinateur", "gaming", "camera", "caméra", "tv",
	"television", "monitor", "écran", "keyboard", "mouse", "souris",
	"bag", "sac", "jacket", "veste", "shirt", "pants", "pantalon", "jeans",
	// price indicators
	"under", "moins de", "sous", "max", "maximum", "min", "minimum",
	// buying/search intent
	"buy", "acheter", "price", "prix", "dollar", "euro", "€", "$",
	"trouver", "find", "cherche", "search", "recherche", "rechercher",
	"aide moi", "help me", "trouve", "find me",
	// product conditions
	"occasion", "used", "neuf", "new", "reconditionné", "refurbished", "usagé",
	// brands
	"air force", "nike", "adidas", "samsung", "apple", "iphone",
}

// negativePatterns mark a message as rejecting previously shown results.
var negativePatterns = []string{
	"je n'aime pas",
	"pas ça",
	"pas intéressé",
	"pas intéressée",
	"je n'aime rien",
	"aucun ne me plaît",
	"aucune ne me plaît",
	"pas convaincu",
	"pas convaincue",
	"montre moi autre chose",
	"autre chose",
	"différent",
	"autre",
	"i don't like",
	"don't like these",
	"not interested",
	"show me more",
	"show me something else",
	"something else",
	"different",
}

// IsLikelyProductSearch reports whether the message obviously asks for a
// product, letting the workflow skip the classifier call.
func IsLikelyProductSearch(message string) bool {
	msg := strings.ToLower(strings.TrimSpace(message))
	for _, kw := range productKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// IsNegativeFeedback reports whether the message rejects previously shown
// results.
func IsNegativeFeedback(message string) bool {
	msg := strings.ToLower(message)
	for _, p := range negativePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

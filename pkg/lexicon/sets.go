package lexicon

// Closed word-class sets used to bias scoring toward visually descriptive
// vocabulary. The sets are expected to be disjoint but nothing relies on it;
// DomainBias composes multiplicatively when a token belongs to more than one.

var colorWords = newSet(
	"black", "white", "red", "blue", "green", "yellow", "orange", "purple",
	"violet", "pink", "brown", "grey", "gray", "gold", "golden", "silver",
	"teal", "turquoise", "crimson", "scarlet", "indigo", "magenta", "cyan",
	"beige", "ivory", "amber", "emerald", "ruby", "sapphire", "pastel",
	"dark", "light", "neon", "monochrome", "sepia", "azure", "maroon",
	"olive", "charcoal", "rust",
)

var moodWords = newSet(
	"moody", "calm", "serene", "peaceful", "dramatic", "melancholy",
	"melancholic", "lonely", "dreamy", "ethereal", "gritty", "cozy", "eerie",
	"mysterious", "vibrant", "somber", "gloomy", "joyful", "nostalgic",
	"tranquil", "tense", "playful", "romantic", "haunting", "bleak", "warm",
	"cold", "soft", "harsh", "minimal", "quiet", "wild", "stormy", "festive",
	"solemn", "whimsical",
)

var compositionWords = newSet(
	"portrait", "landscape", "closeup", "close-up", "macro", "panorama",
	"panoramic", "symmetry", "symmetric", "symmetrical", "silhouette",
	"horizon", "bokeh", "aerial", "overhead", "wide", "telephoto", "profile",
	"centered", "minimalist", "pattern", "texture", "reflection",
	"foreground", "background", "vignette", "framing", "diagonal",
	"negative-space", "top-down", "low-angle", "wide-angle",
)

// stopWords excludes function words plus a few domain-generic search words
// that carry no curation signal.
var stopWords = newSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "when",
	"at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to", "from",
	"up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "once", "here", "there", "all", "any", "both", "each", "few",
	"more", "most", "other", "some", "such", "no", "nor", "not", "only",
	"own", "same", "so", "than", "too", "very", "can", "will", "just",
	"of", "is", "are", "was", "were", "be", "been", "being", "have", "has",
	"had", "do", "does", "did", "it", "its", "this", "that", "these",
	"those", "i", "me", "my", "we", "our", "you", "your", "he", "him",
	"his", "she", "her", "they", "them", "their", "what", "which", "who",
	"whom", "as", "like", "something", "anything",
	"image", "images", "photo", "photos", "picture", "pictures",
)

func newSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func IsColor(token string) bool {
	_, ok := colorWords[token]
	return ok
}

func IsMood(token string) bool {
	_, ok := moodWords[token]
	return ok
}

func IsComposition(token string) bool {
	_, ok := compositionWords[token]
	return ok
}

func IsStopword(token string) bool {
	_, ok := stopWords[token]
	return ok
}

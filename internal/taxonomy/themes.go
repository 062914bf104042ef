package taxonomy

import "strings"

// ThemeBucket is one target group for section consolidation. The normalizer
// matches each question's category hint or text against the keyword list; the
// first matching bucket in declaration order wins.
type ThemeBucket struct {
	Key      string
	Title    string
	Keywords []string
}

// DefaultThemeTitle names the bucket for questions that match no theme.
const DefaultThemeTitle = "General Questions"

// themeBuckets is the fixed ordered list of consolidation targets. The
// keyword lists live here, next to the label table, so the normalizer and the
// validator share one copy.
var themeBuckets = []ThemeBucket{
	{
		Key:      "demographics",
		Title:    "Demographics & Background",
		Keywords: []string{"demographic", "background", "age", "gender", "income", "occupation", "education", "household", "region"},
	},
	{
		Key:      "satisfaction",
		Title:    "Satisfaction & Ratings",
		Keywords: []string{"satisfaction", "satisfied", "rating", "rate ", "nps", "recommend", "experience"},
	},
	{
		Key:      "preference",
		Title:    "Preferences & Features",
		Keywords: []string{"preference", "prefer", "feature", "attribute", "important", "importance", "choose", "select"},
	},
	{
		Key:      "pricing",
		Title:    "Pricing & Value",
		Keywords: []string{"price", "pricing", "cost", "pay", "expensive", "cheap", "value for money", "budget"},
	},
	{
		Key:      "feedback",
		Title:    "Open Feedback",
		Keywords: []string{"feedback", "comment", "suggest", "improve", "anything else", "opinion", "tell us"},
	},
}

// ThemeBuckets returns the ordered consolidation buckets.
func ThemeBuckets() []ThemeBucket {
	return append([]ThemeBucket(nil), themeBuckets...)
}

// MatchTheme classifies a question into a bucket key using its category hint
// first, then a keyword scan of its text. The empty key means the default
// bucket.
func MatchTheme(category, text string) string {
	cat := strings.ToLower(strings.TrimSpace(category))
	lower := strings.ToLower(text)
	for _, bucket := range themeBuckets {
		for _, kw := range bucket.Keywords {
			if cat != "" && strings.Contains(cat, strings.TrimSpace(kw)) {
				return bucket.Key
			}
			if strings.Contains(lower, kw) {
				return bucket.Key
			}
		}
	}
	return ""
}

// ThemeTitle resolves a bucket key to its display title.
func ThemeTitle(key string) string {
	for _, bucket := range themeBuckets {
		if bucket.Key == key {
			return bucket.Title
		}
	}
	return DefaultThemeTitle
}

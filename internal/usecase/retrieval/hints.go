package retrieval

import "news-engine/internal/domain"

// hintCluster maps a group of latin-script trigger tokens to Nepali hint
// terms. A cluster fires when any trigger appears in the query's token set;
// its hints are then appended to the expanded query.
type hintCluster struct {
	triggers []string
	hints    []string
}

// entityHints cover locations and named entities readers search for in
// English while the corpus carries them in Devanagari.
var entityHints = []hintCluster{
	{triggers: []string{"nepal", "nepali", "nepalese"}, hints: []string{"नेपाल", "नेपाली"}},
	{triggers: []string{"kathmandu"}, hints: []string{"काठमाडौं"}},
	{triggers: []string{"pokhara"}, hints: []string{"पोखरा"}},
	{triggers: []string{"everest"}, hints: []string{"सगरमाथा"}},
	{triggers: []string{"india", "indian"}, hints: []string{"भारत"}},
	{triggers: []string{"china", "chinese"}, hints: []string{"चीन"}},
	{triggers: []string{"america", "american", "usa"}, hints: []string{"अमेरिका"}},
}

// keywordHints cover the sports, finance, and politics vocabulary that shows
// up in cross-lingual queries.
var keywordHints = []hintCluster{
	{triggers: []string{"match", "game"}, hints: []string{"खेल"}},
	{triggers: []string{"loss", "lost", "defeat", "defeated"}, hints: []string{"हार", "पराजय"}},
	{triggers: []string{"win", "won", "victory"}, hints: []string{"जित", "विजय"}},
	{triggers: []string{"cricket"}, hints: []string{"क्रिकेट"}},
	{triggers: []string{"football", "soccer"}, hints: []string{"फुटबल"}},
	{triggers: []string{"team"}, hints: []string{"टोली"}},
	{triggers: []string{"tournament", "championship"}, hints: []string{"प्रतियोगिता"}},
	{triggers: []string{"election", "elections"}, hints: []string{"निर्वाचन", "चुनाव"}},
	{triggers: []string{"government"}, hints: []string{"सरकार"}},
	{triggers: []string{"minister"}, hints: []string{"मन्त्री"}},
	{triggers: []string{"parliament"}, hints: []string{"संसद"}},
	{triggers: []string{"budget"}, hints: []string{"बजेट"}},
	{triggers: []string{"economy", "economic"}, hints: []string{"अर्थतन्त्र"}},
	{triggers: []string{"bank", "banking"}, hints: []string{"बैंक"}},
	{triggers: []string{"market", "markets"}, hints: []string{"बजार"}},
	{triggers: []string{"price", "prices"}, hints: []string{"मूल्य"}},
	{triggers: []string{"earthquake"}, hints: []string{"भूकम्प"}},
	{triggers: []string{"flood", "floods"}, hints: []string{"बाढी"}},
	{triggers: []string{"weather"}, hints: []string{"मौसम"}},
	{triggers: []string{"tourism", "tourist"}, hints: []string{"पर्यटन"}},
	{triggers: []string{"education"}, hints: []string{"शिक्षा"}},
	{triggers: []string{"health", "hospital"}, hints: []string{"स्वास्थ्य", "अस्पताल"}},
}

// topicHints are pulled in by inferred intent topics rather than by literal
// query tokens, so a query classified as sports gains the sports vocabulary
// even when no trigger token matched.
var topicHints = map[domain.Topic][]string{
	domain.TopicSports:        {"खेलकुद", "खेल"},
	domain.TopicFinance:       {"अर्थ", "बजार"},
	domain.TopicPolitics:      {"राजनीति", "सरकार"},
	domain.TopicArt:           {"कला"},
	domain.TopicCulture:       {"संस्कृति"},
	domain.TopicInternational: {"अन्तर्राष्ट्रिय", "विश्व"},
}

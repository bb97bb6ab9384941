package usecase

import "news-engine/internal/domain"

// topicPrototypes holds the seed phrases whose mean embedding forms each
// topic centroid. Phrases are bilingual so Devanagari text lands near the
// same centroids as English text under a multilingual embedding model.
var topicPrototypes = map[domain.Topic][]string{
	domain.TopicFinance: {
		"stock market and share prices",
		"central bank interest rate decision",
		"company earnings and quarterly revenue",
		"inflation and the national economy",
		"सेयर बजार र लगानी",
		"बैंक ब्याजदर र अर्थतन्त्र",
	},
	domain.TopicSports: {
		"cricket match result and tournament",
		"football league championship game",
		"national team players and coach",
		"olympics and athletic competition",
		"क्रिकेट खेल र प्रतियोगिता",
		"राष्ट्रिय फुटबल टोली",
	},
	domain.TopicPolitics: {
		"parliament election and government formation",
		"prime minister cabinet decision",
		"political party campaign and voting",
		"constitution and supreme court ruling",
		"संसद निर्वाचन र सरकार",
		"प्रधानमन्त्री र राजनीतिक दल",
	},
	domain.TopicArt: {
		"art gallery exhibition and painting",
		"cinema film festival premiere",
		"theatre performance and literature",
		"photography and sculpture showcase",
		"कला प्रदर्शनी र चित्रकला",
		"चलचित्र र साहित्य",
	},
	domain.TopicCulture: {
		"cultural heritage and traditional festival",
		"community celebration and ritual",
		"folk music and traditional dance",
		"language and religious tradition",
		"सांस्कृतिक सम्पदा र चाडपर्व",
		"परम्परागत नृत्य र संगीत",
	},
	domain.TopicInternational: {
		"united nations summit and treaty",
		"international diplomacy between countries",
		"global conflict and ceasefire talks",
		"foreign relations and border dispute",
		"अन्तर्राष्ट्रिय सम्बन्ध र कूटनीति",
		"विश्व शान्ति वार्ता",
	},
}

package models

// Logical collection names for sequenced posts. Each maps to one physical
// table and one sequence counter row.
const (
	CollectionAnalyses = "analyses"
	CollectionQuests   = "quests"
	CollectionArticles = "articles"
)

// PostCollections lists every sequenced-post collection the site stores.
var PostCollections = []string{CollectionAnalyses, CollectionQuests, CollectionArticles}

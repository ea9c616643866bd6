package news

import (
	"log"
	"strings"
)

const (
	titleWeight = 0.7
	bodyWeight  = 0.3

	// DefaultSimilarityThreshold is used when the caller passes no threshold.
	DefaultSimilarityThreshold = 0.6

	maxMergedSources    = 3
	maxSupplements      = 2
	supplementMinLen    = 50
	uniqueVocabFraction = 0.3
)

// Authority domains win when picking the base record and the merged URL.
var authorityDomains = []string{".gov", ".edu", "nature.com", "fda.gov", "efsa.europa.eu"}

var authoritySources = []string{"fda", "efsa", "nature", "nutraceuticals"}

var topicalSources = []string{"food", "health", "science"}

var industryDomains = []string{"nutraceuticals", "fooddive", "wholefoodsmagazine"}

// Merger clusters near-duplicate items and collapses each cluster into one
// merged record. Comparison cost is O(n^2) per batch, which is fine for the
// batch sizes the fetchers produce.
type Merger struct {
	threshold float64
}

func NewMerger(threshold float64) *Merger {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Merger{threshold: threshold}
}

// Merge deduplicates the batch. Singleton groups pass through unchanged;
// groups of two or more become one merged item. Output keeps the first-seen
// order of each group's earliest member.
func (m *Merger) Merge(items []RawItem) []RawItem {
	if len(items) == 0 {
		return nil
	}

	log.Printf("dedup: start with %d items", len(items))

	groups := m.findSimilarGroups(items)

	merged := make([]RawItem, 0, len(groups))
	for _, group := range groups {
		if len(group) == 1 {
			merged = append(merged, items[group[0]])
			continue
		}
		members := make([]RawItem, 0, len(group))
		titles := make([]string, 0, len(group))
		for _, idx := range group {
			members = append(members, items[idx])
			titles = append(titles, shorten(items[idx].Title, 30))
		}
		merged = append(merged, mergeGroup(members))
		log.Printf("dedup: merged %d similar items: %v", len(group), titles)
	}

	log.Printf("dedup: done, %d items remain", len(merged))
	return merged
}

// findSimilarGroups makes a single pass: every not-yet-grouped item seeds a
// group, and every later ungrouped item similar enough to the seed joins it.
func (m *Merger) findSimilarGroups(items []RawItem) [][]int {
	var groups [][]int
	taken := make(map[int]bool, len(items))

	for i := range items {
		if taken[i] {
			continue
		}
		group := []int{i}
		taken[i] = true

		for j := i + 1; j < len(items); j++ {
			if taken[j] {
				continue
			}
			if m.similarity(items[i], items[j]) >= m.threshold {
				group = append(group, j)
				taken[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// similarity weighs title likeness at 70% and body likeness at 30%.
func (m *Merger) similarity(a, b RawItem) float64 {
	titleSim := TextRatio(CleanText(a.Title), CleanText(b.Title))
	bodySim := TextRatio(CleanText(similarityBody(a)), CleanText(similarityBody(b)))
	return titleSim*titleWeight + bodySim*bodyWeight
}

func similarityBody(it RawItem) string {
	if it.Description != "" {
		return it.Description
	}
	return it.Content
}

func mergeGroup(members []RawItem) RawItem {
	base := selectBase(members)

	merged := base
	merged.Title = longestTitle(members)
	body := mergeBodies(members)
	merged.Description = body
	merged.Content = body
	merged.URL = selectBestURL(members)
	merged.Source = "merged: " + joinSources(members)
	merged.SourceType = SourceMerged
	merged.MergedCount = len(members)

	merged.OriginalSources = make([]string, 0, len(members))
	for _, it := range members {
		merged.OriginalSources = append(merged.OriginalSources, it.Source)
	}
	return merged
}

// selectBase picks the most complete member: longer body wins, trusted
// sources and authority URL domains add flat bonuses.
func selectBase(members []RawItem) RawItem {
	best := members[0]
	bestScore := -1.0

	for _, it := range members {
		score := float64(len(similarityBody(it))) * 0.01

		source := strings.ToLower(it.Source)
		if containsAnySubstring(source, authoritySources) {
			score += 50
		} else if containsAnySubstring(source, topicalSources) {
			score += 20
		}
		if containsAnySubstring(it.URL, authorityDomains) {
			score += 30
		}

		if score > bestScore {
			bestScore = score
			best = it
		}
	}
	return best
}

func longestTitle(members []RawItem) string {
	best := ""
	for _, it := range members {
		t := strings.TrimSpace(it.Title)
		if len(t) > len(best) {
			best = t
		}
	}
	return best
}

// mergeBodies keeps the longest body and appends up to two excerpts from
// other members when they bring a material share of new vocabulary.
func mergeBodies(members []RawItem) string {
	var bodies []string
	for _, it := range members {
		if b := strings.TrimSpace(similarityBody(it)); b != "" {
			bodies = append(bodies, b)
		}
	}
	if len(bodies) == 0 {
		return ""
	}

	main := bodies[0]
	for _, b := range bodies[1:] {
		if len(b) > len(main) {
			main = b
		}
	}

	var extra []string
	for _, b := range bodies {
		if b == main || len(b) <= supplementMinLen {
			continue
		}
		if hasNewVocabulary(main, b) {
			extra = append(extra, b)
		}
		if len(extra) >= maxSupplements {
			break
		}
	}

	if len(extra) == 0 {
		return main
	}
	return main + "\n\nAdditional coverage: " + strings.Join(extra, " | ")
}

// hasNewVocabulary reports whether over 30% of the other body's distinct
// words are absent from the main body.
func hasNewVocabulary(main, other string) bool {
	mainWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(CleanText(main))) {
		mainWords[w] = true
	}
	otherWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(CleanText(other))) {
		otherWords[w] = true
	}
	if len(otherWords) == 0 {
		return false
	}
	unique := 0
	for w := range otherWords {
		if !mainWords[w] {
			unique++
		}
	}
	return float64(unique)/float64(len(otherWords)) > uniqueVocabFraction
}

func joinSources(members []RawItem) string {
	var sources []string
	for _, it := range members {
		s := it.Source
		if s == "" {
			s = string(it.SourceType)
		}
		if s == "" || containsString(sources, s) {
			continue
		}
		sources = append(sources, s)
		if len(sources) >= maxMergedSources {
			break
		}
	}
	return strings.Join(sources, ", ")
}

// selectBestURL prefers authority domains, then known industry outlets,
// then the first URL present.
func selectBestURL(members []RawItem) string {
	var urls []string
	for _, it := range members {
		if it.URL != "" {
			urls = append(urls, it.URL)
		}
	}
	if len(urls) == 0 {
		return ""
	}
	for _, u := range urls {
		if containsAnySubstring(u, authorityDomains) {
			return u
		}
	}
	for _, u := range urls {
		if containsAnySubstring(u, industryDomains) {
			return u
		}
	}
	return urls[0]
}

func containsAnySubstring(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

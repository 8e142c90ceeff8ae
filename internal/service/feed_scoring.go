package service

import (
	"sort"

	"github.com/deep-platform/deep-api/internal/models"
)

const (
	interestMultiplier   = 1.5
	engagementMultiplier = 1.2
)

// feedSignals is the per-request personalization input.
type feedSignals struct {
	interestTags map[string]struct{}
	engagedTags  map[string]struct{}
}

func newFeedSignals(interest *models.UserInterest, recent []models.RecentEngagement) feedSignals {
	signals := feedSignals{
		interestTags: make(map[string]struct{}),
		engagedTags:  make(map[string]struct{}),
	}
	if interest != nil {
		for _, tag := range interest.Tags {
			signals.interestTags[tag] = struct{}{}
		}
	}
	for _, event := range recent {
		for _, tag := range event.Tags {
			signals.engagedTags[tag] = struct{}{}
		}
	}
	return signals
}

func overlaps(tags []string, set map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	for _, tag := range tags {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}

// score is likesCount boosted x1.5 on interest overlap and x1.2 when a recently
// engaged post shares a tag; the boosts compose.
func (f feedSignals) score(post models.Post) float64 {
	score := float64(post.LikesCount)
	if overlaps(post.Tags, f.interestTags) {
		score *= interestMultiplier
	}
	if overlaps(post.Tags, f.engagedTags) {
		score *= engagementMultiplier
	}
	return score
}

// rank scores one page and orders it by score, keeping the incoming order on ties.
func (f feedSignals) rank(posts []models.Post) []models.ScoredPost {
	ranked := make([]models.ScoredPost, len(posts))
	for i, post := range posts {
		ranked[i] = models.ScoredPost{Post: post, Score: f.score(post)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

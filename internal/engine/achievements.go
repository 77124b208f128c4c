package engine

import (
	"slices"
	"strings"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/outcome"
)

const (
	AchievementEcoHero  = "eco-hero"
	AchievementChampion = "champion"
)

// Achievements is the catalog of unlockable badges.
var Achievements = map[string]climate.Achievement{
	AchievementEcoHero: {
		ID:          AchievementEcoHero,
		Name:        "Eco-Hero!",
		Description: "A perfect round: the lowest-impact choice on every question.",
		Icon:        "🏆",
	},
	AchievementChampion: {
		ID:          AchievementChampion,
		Name:        "Climate Champion",
		Description: "Reached the highest C-Level.",
		Icon:        "🌟",
	},
}

type roundResult struct {
	score             int
	questionsPerRound int
	tier              outcome.Tier
	bestTier          outcome.Tier
}

var achievementRules = []struct {
	id     string
	earned func(roundResult) bool
}{
	{AchievementEcoHero, func(r roundResult) bool { return r.score == r.questionsPerRound*climate.MinChoiceScore }},
	{AchievementChampion, func(r roundResult) bool { return r.tier.Label == r.bestTier.Label }},
}

// unlockAchievements adds every newly earned badge to team.Achievements and
// returns the ones unlocked by this round. Badges are unlocked once per match.
func unlockAchievements(team *climate.Team, r roundResult) []climate.Achievement {
	unlocked := []climate.Achievement{}
	for _, rule := range achievementRules {
		if !rule.earned(r) || team.HasAchievement(rule.id) {
			continue
		}
		team.Achievements = append(team.Achievements, rule.id)
		unlocked = append(unlocked, Achievements[rule.id])
	}
	return unlocked
}

// AchievementIDs returns the catalog ids in a stable order.
func AchievementIDs() []string {
	ids := make([]string, 0, len(Achievements))
	for id := range Achievements {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

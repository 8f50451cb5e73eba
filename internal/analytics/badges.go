package analytics

type BadgeID string

const (
	BadgeSharpshooter BadgeID = "sharpshooter"
	BadgeQuickDraw    BadgeID = "quick_draw"
	BadgeFlawless     BadgeID = "flawless"
	BadgeSurvivor     BadgeID = "survivor"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeSharpshooter: {ID: BadgeSharpshooter, Name: "Sharpshooter", Description: "10+ hits in a single round", Icon: "🎯"},
	BadgeQuickDraw:    {ID: BadgeQuickDraw, Name: "Quick Draw", Description: "Average reaction under 400ms over 5+ hits", Icon: "⚡"},
	BadgeFlawless:     {ID: BadgeFlawless, Name: "Flawless", Description: "Scored without a single miss", Icon: "✨"},
	BadgeSurvivor:     {ID: BadgeSurvivor, Name: "Survivor", Description: "Lasted until the timer ran out", Icon: "⏱️"},
}

// EvaluateRoundBadges checks which badges a finished round earned.
func EvaluateRoundBadges(stats RoundStats) []Badge {
	var earned []Badge

	if stats.Hits >= 10 {
		earned = append(earned, AllBadges[BadgeSharpshooter])
	}

	if stats.Hits >= 5 && stats.AvgReactionMs > 0 && stats.AvgReactionMs < 400 {
		earned = append(earned, AllBadges[BadgeQuickDraw])
	}

	if stats.Hits > 0 && stats.Misses == 0 {
		earned = append(earned, AllBadges[BadgeFlawless])
	}

	if stats.TimedOut {
		earned = append(earned, AllBadges[BadgeSurvivor])
	}

	return earned
}

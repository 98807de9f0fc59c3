package utils

/**
 * Utility functions to format the keys for Redis (key, value) pairs.
 * Avoids repeating the same "fmt.Sprintf(...)" format specs across the
 * codebase, potentially confusing the key format.
 */

import "fmt"

func FormatPresenceKey(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}

func FormatDailyClaimKey(userID string) string {
	return fmt.Sprintf("claim:daily:%s", userID)
}

func FormatWeeklyBonusKey(userID string) string {
	return fmt.Sprintf("claim:weekly:%s", userID)
}

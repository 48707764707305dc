package conversation

import "github.com/google/uuid"

// ResolveThreadKey derives the conversation thread key for a (user, coach)
// pair. Without newThread the key is stable, which is what gives a
// returning user their conversation back. With newThread a fresh uuid
// suffix forks a new lineage while leaving the old one addressable.
func ResolveThreadKey(userID, coachID string, newThread bool) string {
	key := userID + "_" + coachID
	if newThread {
		key += "_" + uuid.NewString()
	}
	return key
}

// Package sections binds each admin section's record type to the generic
// collection editor: document codec, closed field set, dirty comparison,
// partitioning and id policy.
package sections

import (
	"strings"

	"church/internal/application/collection"
	"church/internal/domain/localized"
	"church/internal/domain/localtime"
)

// Collection names in the document store.
const (
	EventsCollection        = "events"
	VerseCollection         = "verse"
	NewsletterCollection    = "newsletter"
	OverridesCollection     = "overrides"
	AnnouncementsCollection = "announcements"
)

// Names lists the admin sections in console order.
var Names = []string{
	EventsCollection,
	VerseCollection,
	NewsletterCollection,
	OverridesCollection,
	AnnouncementsCollection,
}

func trim(fields map[string]any, key string) string {
	return strings.TrimSpace(collection.Str(fields, key))
}

func text(fields map[string]any, key string) localized.Text {
	return localized.FromAny(fields[key])
}

// keepStoredID returns original when it is desired itself or a collision
// copy of desired, so editing other fields never reads as a key change.
func keepStoredID(desired, original string) string {
	if original == desired {
		return original
	}
	if rest, ok := strings.CutPrefix(original, desired+"-"); ok && localtime.IsClockSuffix(rest) {
		return original
	}
	return desired
}

package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/motionlog/motiond/types/fix"
)

// NewClassifiedFixFeed is emitted for every fix that made it through the
// whole pipeline: cleaned, classified, and persisted. The fix carries the
// Mode, ModeConfidence and ModeReason properties by the time it lands here.
var NewClassifiedFixFeed = event.FeedOf[*fix.Fix]{}

// HTTPPopulateFeed is a feed of fixes as they are pushed to the server.
// The fixes included as the payload should be expected to be nearly-exactly as they are received.
// They will have been decoded and sorted, but not validated, deduped, nor necessarily even classified.
// A reminder, too, that this event is emitted only in the context of an HTTP request.
// motiond supports other protocols for fix population, such as reading stdin.
var HTTPPopulateFeed = event.FeedOf[[]*fix.Fix]{}

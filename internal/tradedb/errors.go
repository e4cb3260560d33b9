package tradedb

import "fmt"

// BadTimestampError is returned by NewOfferIndex when a StationItem row's
// modified timestamp cannot be parsed into an epoch. Fatal to construction.
type BadTimestampError struct {
	Station StationID
	Item    ItemID
	Raw     string
}

func (e *BadTimestampError) Error() string {
	return fmt.Sprintf(
		"station %d has a StationItem entry for item %d with an invalid modified timestamp: %q",
		e.Station, e.Item, e.Raw,
	)
}

// NoItemsToLoadError is returned by NewOfferIndex when the configured
// avoid/restrict item filters leave nothing to load. Fatal to construction.
type NoItemsToLoadError struct{}

func (e *NoItemsToLoadError) Error() string {
	return "no items to load: avoidItems/restrictItems leave an empty set"
}

package scheduler

// SlotsURL returns the URL queried for location.
func (c Client) SlotsURL(location string) (string, error) {
	return c.slotsURL(location)
}

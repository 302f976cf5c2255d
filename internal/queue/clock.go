/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package queue

import "time"

// Clock supplies the current time. Injected so scheduling decisions are
// testable and the site timezone is explicit rather than ambient.
type Clock interface {
	Now() time.Time
}

type siteClock struct {
	loc *time.Location
}

// NewSiteClock returns a Clock reporting wall time in the site's location.
func NewSiteClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &siteClock{loc: loc}
}

func (c *siteClock) Now() time.Time {
	return time.Now().In(c.loc)
}

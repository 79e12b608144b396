package shared

import (
	"time"

	"github.com/rs/zerolog/log"
)

// RunDate resolves the logical calendar day for a pipeline run in the named
// zone, falling back to the local date when the zone cannot be loaded. All
// three tables are partitioned by this date.
func RunDate(tz string) time.Time {
	now := time.Now()
	if loc, err := time.LoadLocation(tz); err == nil {
		now = now.In(loc)
	} else {
		log.Warn().Str("tz", tz).Err(err).Msg("timezone load failed, using local date")
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

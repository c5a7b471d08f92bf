package checker

import (
	"time"

	"github.com/jward/docspell/internal/logging"
	"github.com/jward/docspell/internal/suggestion"
)

// Observer is told about every detector of a dispatch pass.
type Observer interface {
	Skipped(d suggestion.Detector, reason SkipReason, err error)
	Started(d suggestion.Detector)
	Finished(d suggestion.Detector, found int, elapsed time.Duration)
}

// LogObserver reports dispatch progress through a logger.
type LogObserver struct {
	Log logging.Logger
}

func (o LogObserver) Skipped(d suggestion.Detector, reason SkipReason, err error) {
	log := logging.OrNop(o.Log)
	switch {
	case err != nil:
		log.Warnf("%s skipped (%s): %v", d, reason, err)
	case reason == Disabled:
		log.Debugf("%s skipped (%s)", d, reason)
	default:
		log.Infof("%s skipped (%s)", d, reason)
	}
}

func (o LogObserver) Started(d suggestion.Detector) {
	logging.OrNop(o.Log).Debugf("%s started", d)
}

func (o LogObserver) Finished(d suggestion.Detector, found int, elapsed time.Duration) {
	logging.OrNop(o.Log).Infof("%s: %d suggestion(s) in %s", d, found, elapsed.Round(time.Millisecond))
}

type nopObserver struct{}

func (nopObserver) Skipped(suggestion.Detector, SkipReason, error)   {}
func (nopObserver) Started(suggestion.Detector)                      {}
func (nopObserver) Finished(suggestion.Detector, int, time.Duration) {}

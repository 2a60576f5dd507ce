package tpcsim

import (
	"errors"
	"fmt"
	"io"
)

// EventSource hands over the events of a run in increasing event id order.
type EventSource interface {
	NextEvent() (Event, error)
}

// ProcessEvents feeds every event of the source to the aggregator. Events
// failing a consistency check are dropped when discard is set, otherwise
// they end the run.
func ProcessEvents(source EventSource, aggregator *Aggregator, progress *Progress, discard bool) error {
	for {
		event, err := source.NextEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("error reading event: %w", err)
		}
		if progress != nil {
			progress.BeginEvent(event.EventID)
		}
		if err := processEvent(aggregator, event, discard); err != nil {
			return err
		}
		if progress != nil {
			progress.EndEvent(event.EventID)
		}
	}
}

func processEvent(aggregator *Aggregator, event Event, discard bool) error {
	persisted, err := aggregator.ProcessEvent(event)
	if err != nil {
		var inconsistent *ErrPmtIndexOutOfRange
		if errors.As(err, &inconsistent) && discard {
			logger.Error(err.Error())
			logger.Error(fmt.Sprintf("discarding event %d", event.EventID))
			return nil
		}
		return fmt.Errorf("error processing event %d: %w", event.EventID, err)
	}
	if logVerbosity > 1 {
		message := fmt.Sprintf("Event %d written: %t", event.EventID, persisted)
		logger.Info(message, "run")
	}
	return nil
}

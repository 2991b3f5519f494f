package hotelservice

import (
	"fmt"
	"time"

	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/dateutil"
)

// slotsFor lays out the service's windows on day: one every SlotInterval
// minutes from StartTime while the whole Duration still ends by EndTime.
// Days outside the weekly schedule yield nothing.
func slotsFor(svc *domain.HotelService, day time.Time) ([]domain.ServiceTimeSlot, error) {
	if !svc.OffersOn(day) {
		return nil, nil
	}
	start, err := dateutil.ParseClock(svc.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := dateutil.ParseClock(svc.EndTime)
	if err != nil {
		return nil, err
	}
	if svc.SlotInterval <= 0 || svc.Duration <= 0 {
		return nil, fmt.Errorf("service %d has a non-positive slot interval or duration", svc.ID)
	}

	var out []domain.ServiceTimeSlot
	for t := start; t+svc.Duration <= end; t += svc.SlotInterval {
		out = append(out, domain.ServiceTimeSlot{
			ServiceID:   svc.ID,
			Date:        day,
			StartTime:   dateutil.FormatClock(t),
			EndTime:     dateutil.FormatClock(t + svc.Duration),
			Capacity:    svc.MaxCapacity,
			IsAvailable: true,
		})
	}
	return out, nil
}

// slotAt returns the scheduled window of day starting at clock, if any.
func slotAt(svc *domain.HotelService, day time.Time, clock string) (*domain.ServiceTimeSlot, error) {
	slots, err := slotsFor(svc, day)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].StartTime == clock {
			return &slots[i], nil
		}
	}
	return nil, nil
}

// checkSchedule rejects a service definition that cannot produce a slot.
func checkSchedule(startTime, endTime string, duration int) error {
	start, err := dateutil.ParseClock(startTime)
	if err != nil {
		return err
	}
	end, err := dateutil.ParseClock(endTime)
	if err != nil {
		return err
	}
	if start+duration > end {
		return fmt.Errorf("a %d minute session starting at %s ends after %s", duration, startTime, endTime)
	}
	return nil
}

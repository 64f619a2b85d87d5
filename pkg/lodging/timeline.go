package lodging

// Timeline is a resources × days matrix for calendar rendering.
type Timeline struct {
	CycleID   CycleID
	WeekStart Date
	Days      []Date
	Rows      []TimelineRow
}

// TimelineRow holds the cells of one resource, one per day of the window.
type TimelineRow struct {
	ResourceID ResourceID
	Code       string
	Accessible bool
	Cells      []Cell
}

// Previous returns the anchor of the preceding window.
func (timeline Timeline) Previous() Date {
	return timeline.WeekStart.AddDays(-timelineDays)
}

// Next returns the anchor of the following window.
func (timeline Timeline) Next() Date {
	return timeline.WeekStart.AddDays(timelineDays)
}

// ProjectWeek expands the engine over the 7 days starting at weekStart.
// weekStart needs no alignment to a weekday.
func (availability *Availability) ProjectWeek(weekStart Date) Timeline {
	days := make([]Date, timelineDays)
	for offset := range days {
		days[offset] = weekStart.AddDays(offset)
	}
	rows := make([]TimelineRow, 0, len(availability.resources))
	for _, resource := range availability.resources {
		cells := make([]Cell, len(days))
		for index, day := range days {
			cells[index] = availability.cell(resource, day)
		}
		rows = append(rows, TimelineRow{
			ResourceID: resource.ID,
			Code:       resource.Code,
			Accessible: resource.Accessible,
			Cells:      cells,
		})
	}
	return Timeline{
		CycleID:   availability.cycleID,
		WeekStart: weekStart,
		Days:      days,
		Rows:      rows,
	}
}

// StateBoard is the point-in-time state of every resource.
type StateBoard struct {
	AsOf    Date
	Entries []StateBoardEntry
	Totals  map[ResourceState]int
}

// StateBoardEntry pairs a resource with its derived state and the record behind it.
type StateBoardEntry struct {
	Resource    Resource
	Cell        Cell
	Reservation *Reservation
}

// Board derives the state of every resource on asOf, with totals per state.
func (availability *Availability) Board(asOf Date) StateBoard {
	board := StateBoard{
		AsOf:    asOf,
		Entries: make([]StateBoardEntry, 0, len(availability.resources)),
		Totals: map[ResourceState]int{
			StateAvailable:   0,
			StateReserved:    0,
			StateOccupied:    0,
			StateUnavailable: 0,
		},
	}
	for _, resource := range availability.resources {
		cell := availability.cell(resource, asOf)
		entry := StateBoardEntry{Resource: resource, Cell: cell}
		if reservation, ok := availability.covering(resource.ID, asOf); ok {
			reservationCopy := reservation
			entry.Reservation = &reservationCopy
		}
		board.Entries = append(board.Entries, entry)
		board.Totals[cell.Status]++
	}
	return board
}

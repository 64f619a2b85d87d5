package timelinecache

import (
	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
)

type timelineDocument struct {
	CycleID   string        `json:"cycle_id"`
	WeekStart string        `json:"week_start"`
	Days      []string      `json:"days"`
	Rows      []rowDocument `json:"rows"`
}

type rowDocument struct {
	ResourceID string         `json:"resource_id"`
	Code       string         `json:"code"`
	Accessible bool           `json:"accessible"`
	Cells      []cellDocument `json:"cells"`
}

type cellDocument struct {
	Day           string `json:"day"`
	Status        string `json:"status"`
	Label         string `json:"label,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
	BlackoutID    string `json:"blackout_id,omitempty"`
}

func newTimelineDocument(timeline lodging.Timeline) timelineDocument {
	document := timelineDocument{
		CycleID:   timeline.CycleID.String(),
		WeekStart: timeline.WeekStart.String(),
		Days:      make([]string, 0, len(timeline.Days)),
		Rows:      make([]rowDocument, 0, len(timeline.Rows)),
	}
	for _, day := range timeline.Days {
		document.Days = append(document.Days, day.String())
	}
	for _, row := range timeline.Rows {
		rowDoc := rowDocument{
			ResourceID: row.ResourceID.String(),
			Code:       row.Code,
			Accessible: row.Accessible,
			Cells:      make([]cellDocument, 0, len(row.Cells)),
		}
		for _, cell := range row.Cells {
			cellDoc := cellDocument{
				Day:    cell.Day.String(),
				Status: string(cell.Status),
				Label:  cell.Label,
			}
			if !cell.ReservationID.IsZero() {
				cellDoc.ReservationID = cell.ReservationID.String()
			}
			if !cell.BlackoutID.IsZero() {
				cellDoc.BlackoutID = cell.BlackoutID.String()
			}
			rowDoc.Cells = append(rowDoc.Cells, cellDoc)
		}
		document.Rows = append(document.Rows, rowDoc)
	}
	return document
}

func (document timelineDocument) toTimeline() (lodging.Timeline, error) {
	cycleID, err := lodging.NewCycleID(document.CycleID)
	if err != nil {
		return lodging.Timeline{}, err
	}
	weekStart, err := lodging.ParseDate(document.WeekStart)
	if err != nil {
		return lodging.Timeline{}, err
	}
	timeline := lodging.Timeline{
		CycleID:   cycleID,
		WeekStart: weekStart,
		Days:      make([]lodging.Date, 0, len(document.Days)),
		Rows:      make([]lodging.TimelineRow, 0, len(document.Rows)),
	}
	for _, rawDay := range document.Days {
		day, err := lodging.ParseDate(rawDay)
		if err != nil {
			return lodging.Timeline{}, err
		}
		timeline.Days = append(timeline.Days, day)
	}
	for _, rowDoc := range document.Rows {
		resourceID, err := lodging.NewResourceID(rowDoc.ResourceID)
		if err != nil {
			return lodging.Timeline{}, err
		}
		row := lodging.TimelineRow{
			ResourceID: resourceID,
			Code:       rowDoc.Code,
			Accessible: rowDoc.Accessible,
			Cells:      make([]lodging.Cell, 0, len(rowDoc.Cells)),
		}
		for _, cellDoc := range rowDoc.Cells {
			cell, err := cellDoc.toCell()
			if err != nil {
				return lodging.Timeline{}, err
			}
			row.Cells = append(row.Cells, cell)
		}
		timeline.Rows = append(timeline.Rows, row)
	}
	return timeline, nil
}

func (cellDoc cellDocument) toCell() (lodging.Cell, error) {
	day, err := lodging.ParseDate(cellDoc.Day)
	if err != nil {
		return lodging.Cell{}, err
	}
	cell := lodging.Cell{Day: day, Status: lodging.ResourceState(cellDoc.Status), Label: cellDoc.Label}
	if cellDoc.ReservationID != "" {
		if cell.ReservationID, err = lodging.NewReservationID(cellDoc.ReservationID); err != nil {
			return lodging.Cell{}, err
		}
	}
	if cellDoc.BlackoutID != "" {
		if cell.BlackoutID, err = lodging.NewBlackoutID(cellDoc.BlackoutID); err != nil {
			return lodging.Cell{}, err
		}
	}
	return cell, nil
}

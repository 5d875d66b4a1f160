package layout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/bentobox/generic"
)

// Cell identifies one hour row of one day column.
type Cell struct {
	Day  time.Time `json:"day"`
	Hour int       `json:"hour"`
}

// UnmarshalJSON accepts a day as YYYY-MM-DD or as an RFC 3339 instant.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw struct {
		Day  string `json:"day"`
		Hour int    `json:"hour"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	day, err := time.Parse(time.DateOnly, raw.Day)
	if err != nil {
		if day, err = time.Parse(time.RFC3339, raw.Day); err != nil {
			return fmt.Errorf("cell day %q: want YYYY-MM-DD or RFC 3339", raw.Day)
		}
	}
	c.Day, c.Hour = day, raw.Hour
	return nil
}

// In returns the cell with Day rebuilt as midnight of the same calendar
// date in loc, so the hour row is read as wall-clock time there.
func (c Cell) In(loc *time.Location) Cell {
	if loc == nil {
		return c
	}
	y, m, d := c.Day.Date()
	c.Day = time.Date(y, m, d, 0, 0, 0, 0, loc)
	return c
}

// DropMinute computes the snapped minute within an hour cell for a pointer
// at pointerY pixels below the cell's top edge.
//
//  1. fractional hour = clamp(pointerY / cellHeight, 0, 1)
//  2. exact minutes   = fractional hour * 60
//  3. round to the nearest unit; 60 rolls into the next hour at minute 0
//
// The returned carry is 1 when the result rolled over, else 0.
func DropMinute(pointerY, cellHeight float64, unit generic.Snap) (carry int, minute int) {
	frac := 0.0
	if cellHeight > 0 {
		frac = pointerY / cellHeight
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	exact := frac * 60
	snapped := generic.RoundHalfUp(exact/float64(unit)) * int(unit)
	if snapped >= 60 {
		return 1, 0
	}
	return 0, snapped
}

// DropTime resolves a pointer within cell to an absolute instant.
func DropTime(cell Cell, pointerY, cellHeight float64, unit generic.Snap) time.Time {
	carry, minute := DropMinute(pointerY, cellHeight, unit)
	return generic.AtMinute(cell.Day, (cell.Hour+carry)*60+minute)
}

package elia

import (
	"context"
	"time"
)

const dateLayout = "2006-01-02"

// User is the authenticated account as the backend sees it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Space is one reservable space on a floor plan.
type Space struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// SpaceBooking is a reservation on the floor plan, anyone's.
type SpaceBooking struct {
	Date      time.Time
	SpaceID   string
	SpaceName string
	UserID    string
}

const currentUserQuery = `query CurrentUserWithPermissions {
  currentUser {
    id
    email
    name
  }
}`

// CurrentUser resolves the account behind the bearer token. Also the cheapest
// way to check that the token still works.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var data struct {
		CurrentUser User `json:"currentUser"`
	}
	if err := c.do(ctx, "CurrentUserWithPermissions", currentUserQuery, nil, &data); err != nil {
		return User{}, err
	}
	return data.CurrentUser, nil
}

const floorSpacesQuery = `query FloorSpaces($floorId: ID!) {
  floor(id: $floorId) {
    spaces {
      id
      name
      capacity
    }
  }
}`

// FloorSpaces lists every space on the floor, booked or not.
func (c *Client) FloorSpaces(ctx context.Context, floorID string) ([]Space, error) {
	var data struct {
		Floor struct {
			Spaces []Space `json:"spaces"`
		} `json:"floor"`
	}
	vars := map[string]any{"floorId": floorID}
	if err := c.do(ctx, "FloorSpaces", floorSpacesQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.Floor.Spaces, nil
}

const floorPlanBookingsQuery = `query FloorPlanBookings($floorId: ID!, $from: Date!, $to: Date!) {
  floorPlanBookings(floorId: $floorId, from: $from, to: $to) {
    date
    space {
      id
      name
    }
    user {
      id
    }
  }
}`

// FloorPlanBookings returns every booking on the floor in [from, to].
func (c *Client) FloorPlanBookings(ctx context.Context, floorID string, from, to time.Time) ([]SpaceBooking, error) {
	var data struct {
		FloorPlanBookings []struct {
			Date  string `json:"date"`
			Space struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"space"`
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"floorPlanBookings"`
	}
	vars := map[string]any{
		"floorId": floorID,
		"from":    from.Format(dateLayout),
		"to":      to.Format(dateLayout),
	}
	if err := c.do(ctx, "FloorPlanBookings", floorPlanBookingsQuery, vars, &data); err != nil {
		return nil, err
	}

	out := make([]SpaceBooking, 0, len(data.FloorPlanBookings))
	for _, b := range data.FloorPlanBookings {
		d, err := time.Parse(dateLayout, b.Date)
		if err != nil {
			continue
		}
		out = append(out, SpaceBooking{
			Date:      d,
			SpaceID:   b.Space.ID,
			SpaceName: b.Space.Name,
			UserID:    b.User.ID,
		})
	}
	return out, nil
}

const multiDateBookMutation = `mutation MultiDateBook($floorId: ID!, $spaceId: ID!, $dates: [Date!]!, $start: Time!, $hours: Int!) {
  multiDateBook(floorId: $floorId, spaceId: $spaceId, dates: $dates, start: $start, hours: $hours) {
    id
  }
}`

// MultiDateBook reserves the space for each date with the given daily
// window. The backend applies one window to all dates in the call.
func (c *Client) MultiDateBook(ctx context.Context, floorID, spaceID string, dates []time.Time, start string, hours int) error {
	ds := make([]string, len(dates))
	for i, d := range dates {
		ds[i] = d.Format(dateLayout)
	}
	vars := map[string]any{
		"floorId": floorID,
		"spaceId": spaceID,
		"dates":   ds,
		"start":   start,
		"hours":   hours,
	}
	return c.do(ctx, "MultiDateBook", multiDateBookMutation, vars, nil)
}

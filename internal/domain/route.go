package domain

// RouteStop is one stop on a multi-store shopping route: the store to visit
// and which items from the original list to buy there.
type RouteStop struct {
	StoreName  string   `json:"storeName"`
	ItemsToBuy []string `json:"itemsToBuy"`
}

// OptimalRoute is the AI-generated (or user-composed) multi-stop shopping
// trip. TotalDistance is free-text; IsModified marks routes the user edited
// after generation, whose distance estimate is no longer meaningful.
type OptimalRoute struct {
	Stops         []RouteStop `json:"stops"`
	TotalCost     float64     `json:"totalCost"`
	TotalDistance string      `json:"totalDistance"`
	IsModified    bool        `json:"isModified,omitempty"`
}

// Clone returns a deep, independent copy of the route
func (r OptimalRoute) Clone() OptimalRoute {
	stops := make([]RouteStop, len(r.Stops))
	for i, stop := range r.Stops {
		stop.ItemsToBuy = append([]string(nil), stop.ItemsToBuy...)
		stops[i] = stop
	}
	r.Stops = stops
	return r
}

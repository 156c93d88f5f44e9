package gmapsgpx

// Coordinate is a single point along a route, in decimal degrees.
// An empty Name means the point is unnamed.
type Coordinate struct {
	Lat  float64
	Lng  float64
	Name string
}

// RouteData is the result of extracting a route from a Google Maps URL:
// an ordered, non-empty waypoint list plus a human readable route name.
// Values are built once per conversion and never mutated afterwards.
type RouteData struct {
	Waypoints []Coordinate
	RouteName string
}

package gmapsgpx

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoCoordinates is returned when none of the extraction strategies can
// recover a usable coordinate from the URL.
var ErrNoCoordinates = errors.New("no coordinates found")

const defaultRouteName = "Google Maps Route"

var (
	// Waypoint path segments sit between /dir/ and the /@lat,lng viewport
	// segment (or the end of the path when there is no viewport).
	dirSectionRe = regexp.MustCompile(`/dir/(.+?)(?:/@|$)`)
	coordPairRe  = regexp.MustCompile(`^(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)$`)
	// The data token stream encodes waypoints as !1d<lng>!2d<lat>.
	dataPairRe = regexp.MustCompile(`!1d(-?\d+(?:\.\d+)?)!2d(-?\d+(?:\.\d+)?)`)
	viewportRe = regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)
)

// ExtractRoute parses a fully resolved Google Maps URL and returns the
// ordered waypoints plus an inferred route name.
//
// Google encodes routes in up to three independent ways. Each encoding is
// extracted by its own pure function and the results are combined in fixed
// priority order: coordinates from the data token stream win outright,
// literal lat,lng path segments are the fallback, and the @lat,lng viewport
// marker is used only when both of those produce nothing. Place names found
// in the path are kept either way and attached to the winning coordinates
// positionally.
func ExtractRoute(raw string) (RouteData, error) {
	waypoints, locationNames := extractPathSegments(raw)

	if pairs := extractDataPairs(raw); len(pairs) > 0 {
		waypoints = attachNames(pairs, locationNames)
	}

	if len(waypoints) == 0 {
		if wp, ok := extractViewportMarker(raw); ok {
			waypoints = append(waypoints, wp)
		}
	}

	// Exactly (0,0) is how the URL encodes "no location"; a real route
	// point there is treated as absent for compatibility.
	kept := make([]Coordinate, 0, len(waypoints))
	for _, wp := range waypoints {
		if wp.Lat == 0 && wp.Lng == 0 {
			continue
		}
		kept = append(kept, wp)
	}
	if len(kept) == 0 {
		return RouteData{}, ErrNoCoordinates
	}

	return RouteData{Waypoints: kept, RouteName: routeName(kept, locationNames)}, nil
}

// extractPathSegments walks the /dir/ section of the path. Literal lat,lng
// segments become unnamed waypoints; everything else is percent-decoded and
// collected as an ordered place-name list.
func extractPathSegments(raw string) ([]Coordinate, []string) {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.EscapedPath() != "" {
		path = u.EscapedPath()
	}

	m := dirSectionRe.FindStringSubmatch(path)
	if m == nil {
		return nil, nil
	}

	var waypoints []Coordinate
	var names []string
	for _, seg := range strings.Split(m[1], "/") {
		if seg == "" || strings.HasPrefix(seg, "data=") {
			continue
		}
		if cm := coordPairRe.FindStringSubmatch(seg); cm != nil {
			lat, errLat := strconv.ParseFloat(cm[1], 64)
			lng, errLng := strconv.ParseFloat(cm[2], 64)
			if errLat == nil && errLng == nil {
				waypoints = append(waypoints, Coordinate{Lat: lat, Lng: lng})
			}
			continue
		}
		name, err := url.QueryUnescape(seg)
		if err != nil {
			name = seg
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return waypoints, names
}

// extractDataPairs scans the proprietary data token stream for
// !1d<lng>!2d<lat> pairs, in order of appearance. The stream lives either
// in a data query parameter or in a data= path segment (percent-encoded).
func extractDataPairs(raw string) []Coordinate {
	var data string
	if u, err := url.Parse(raw); err == nil {
		data = u.Query().Get("data")
		if data == "" {
			for _, seg := range strings.Split(u.EscapedPath(), "/") {
				if !strings.HasPrefix(seg, "data=") {
					continue
				}
				enc := strings.TrimPrefix(seg, "data=")
				if dec, err := url.PathUnescape(enc); err == nil {
					data = dec
				} else {
					data = enc
				}
				break
			}
		}
	}
	if data == "" {
		return nil
	}

	var pairs []Coordinate
	for _, m := range dataPairRe.FindAllStringSubmatch(data, -1) {
		lng, errLng := strconv.ParseFloat(m[1], 64)
		lat, errLat := strconv.ParseFloat(m[2], 64)
		if errLng != nil || errLat != nil {
			continue
		}
		pairs = append(pairs, Coordinate{Lat: lat, Lng: lng})
	}
	return pairs
}

// extractViewportMarker finds the @lat,lng viewport marker. It contributes
// a single unnamed waypoint when no other strategy produced anything.
func extractViewportMarker(raw string) (Coordinate, bool) {
	m := viewportRe.FindStringSubmatch(raw)
	if m == nil {
		return Coordinate{}, false
	}
	lat, errLat := strconv.ParseFloat(m[1], 64)
	lng, errLng := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLng != nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lng: lng}, true
}

// attachNames labels data-stream coordinates with the path-derived place
// names, positionally. Positions without a name get a synthesized label.
// Name counts below the coordinate count are expected for routes with via
// points the URL never names; the attribution stays positional on purpose.
func attachNames(pairs []Coordinate, names []string) []Coordinate {
	out := make([]Coordinate, len(pairs))
	for i, p := range pairs {
		switch {
		case i < len(names):
			p.Name = names[i]
		case i == 0:
			p.Name = "Start"
		case i == len(pairs)-1:
			p.Name = "End"
		default:
			p.Name = fmt.Sprintf("Via %d", i)
		}
		out[i] = p
	}
	return out
}

func routeName(waypoints []Coordinate, names []string) string {
	if len(names) >= 2 {
		return names[0] + " to " + names[len(names)-1]
	}
	if len(waypoints) >= 2 {
		first := waypoints[0].Name
		if first == "" {
			first = "Start"
		}
		last := waypoints[len(waypoints)-1].Name
		if last == "" {
			last = "End"
		}
		return first + " to " + last
	}
	return defaultRouteName
}

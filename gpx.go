package gmapsgpx

import (
	"strconv"
	"strings"
)

// GPXCreator is written into the creator attribute of every document.
const GPXCreator = "gmaps-gpx"

// SerializeGPX renders a route as a GPX 1.1 document with one track and
// one segment, one trkpt per waypoint in input order. nameOverride, when
// non-empty, replaces the extracted route name. Unnamed waypoints get a
// "Waypoint <n>" label so consumers always see a name element.
func SerializeGPX(route RouteData, nameOverride string) string {
	name := route.RouteName
	if nameOverride != "" {
		name = nameOverride
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<gpx version=\"1.1\" creator=\"" + GPXCreator + "\"\n")
	b.WriteString("  xmlns=\"http://www.topografix.com/GPX/1/1\"\n")
	b.WriteString("  xmlns:xsi=\"http://www.w3.org/2001/XMLSchema-instance\"\n")
	b.WriteString("  xsi:schemaLocation=\"http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd\">\n")
	b.WriteString("  <trk>\n")
	b.WriteString("    <name>")
	b.WriteString(xmlEscape(name))
	b.WriteString("</name>\n")
	b.WriteString("    <trkseg>\n")
	for i, wp := range route.Waypoints {
		wpName := wp.Name
		if wpName == "" {
			wpName = "Waypoint " + strconv.Itoa(i+1)
		}
		b.WriteString("      <trkpt lat=\"")
		b.WriteString(formatCoord(wp.Lat))
		b.WriteString("\" lon=\"")
		b.WriteString(formatCoord(wp.Lng))
		b.WriteString("\"><name>")
		b.WriteString(xmlEscape(wpName))
		b.WriteString("</name></trkpt>\n")
	}
	b.WriteString("    </trkseg>\n")
	b.WriteString("  </trk>\n")
	b.WriteString("</gpx>\n")
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// xmlEscape replaces the five reserved XML characters. The single-pass
// replacer never touches entities it has just produced, so text that
// already contains & escapes to exactly one &amp;.
func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}

// Package gmapsgpx converts Google Maps route URLs into GPX 1.1 track files.
//
// The conversion pipeline has three stages:
//
//   - ExtractRoute recognizes the coordinate encodings Google Maps embeds in
//     its URLs and reconciles them into one ordered waypoint list
//   - SerializeGPX renders the waypoints as a single-track GPX document
//   - SuggestedFilename derives a safe output filename from the route name
//
// Shortened maps.app.goo.gl links are expanded by Resolver. StartServer
// exposes the resolver and the converter over HTTP so browser callers can
// get around same-origin restrictions on following redirects.
package gmapsgpx

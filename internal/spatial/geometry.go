package spatial

// Centroid calculates the arithmetic centroid of a set of points.
// Good enough for campus-sized rings; not a true spherical centroid.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}

	return Point{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}
}

// BoundingBox calculates the bounding box of a set of points
func BoundingBox(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	b := Bounds{North: points[0].Lat, South: points[0].Lat, East: points[0].Lon, West: points[0].Lon}
	for _, p := range points[1:] {
		if p.Lat > b.North {
			b.North = p.Lat
		}
		if p.Lat < b.South {
			b.South = p.Lat
		}
		if p.Lon > b.East {
			b.East = p.Lon
		}
		if p.Lon < b.West {
			b.West = p.Lon
		}
	}

	return b
}

// CircleBounds returns a box that encloses a circle of radiusMeters around
// center. The box is slightly larger than the circle; it is only used as a
// cheap prefilter before the exact distance test.
func CircleBounds(center Point, radiusMeters float64) Bounds {
	north := DestinationPoint(center, 0, radiusMeters)
	south := DestinationPoint(center, 180, radiusMeters)
	east := DestinationPoint(center, 90, radiusMeters)
	west := DestinationPoint(center, 270, radiusMeters)
	// pad for float error at the edge of the radius
	const pad = 1e-9
	return Bounds{
		North: north.Lat + pad,
		South: south.Lat - pad,
		East:  east.Lon + pad,
		West:  west.Lon - pad,
	}
}

// PointInPolygon checks if a point is inside a ring using even-odd ray
// casting. The ring is treated as implicitly closed: the last vertex connects
// back to the first whether or not it is repeated. Points exactly on an edge
// or vertex may land on either side; callers must not rely on boundary
// semantics.
func PointInPolygon(point Point, ring []Point) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}
	if len(ring) < 3 {
		return false, nil
	}

	inside := false
	j := len(ring) - 1

	for i := 0; i < len(ring); i++ {
		if ((ring[i].Lat > point.Lat) != (ring[j].Lat > point.Lat)) &&
			(point.Lon < (ring[j].Lon-ring[i].Lon)*(point.Lat-ring[i].Lat)/(ring[j].Lat-ring[i].Lat)+ring[i].Lon) {
			inside = !inside
		}
		j = i
	}

	return inside, nil
}

// PointInCircle reports whether point lies within radiusMeters of center.
// The boundary is inclusive.
func PointInCircle(point, center Point, radiusMeters float64) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}
	if err := center.Validate(); err != nil {
		return false, err
	}
	return DistanceMeters(point, center) <= radiusMeters, nil
}

// Interpolate returns the point a fraction t (0..1) of the way from a to b,
// linearly in degree space.
func Interpolate(a, b Point, t float64) Point {
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lon: a.Lon + (b.Lon-a.Lon)*t,
	}
}

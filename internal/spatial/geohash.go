package spatial

import "fmt"

// Base32 alphabet for geohash
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// Supported geohash precision range
const (
	MinGeohashPrecision = 1
	MaxGeohashPrecision = 12
)

// EncodeGeohash encodes a point into a geohash string of the given number of
// characters. Precision is clamped to 1..12.
func EncodeGeohash(p Point, precision int) string {
	if precision < MinGeohashPrecision {
		precision = MinGeohashPrecision
	}
	if precision > MaxGeohashPrecision {
		precision = MaxGeohashPrecision
	}

	latRange := [2]float64{-90.0, 90.0}
	lonRange := [2]float64{-180.0, 180.0}

	geohash := make([]byte, 0, precision)
	bits := 0
	even := true
	ch := 0

	for len(geohash) < precision {
		if even {
			mid := (lonRange[0] + lonRange[1]) / 2
			if p.Lon >= mid {
				ch |= 1 << (4 - bits)
				lonRange[0] = mid
			} else {
				lonRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if p.Lat >= mid {
				ch |= 1 << (4 - bits)
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}
		even = !even

		bits++
		if bits == 5 {
			geohash = append(geohash, base32[ch])
			bits = 0
			ch = 0
		}
	}

	return string(geohash)
}

// GeohashBounds returns the bounding box of a geohash cell
func GeohashBounds(geohash string) (Bounds, error) {
	if geohash == "" {
		return Bounds{}, fmt.Errorf("empty geohash")
	}

	latRange := [2]float64{-90.0, 90.0}
	lonRange := [2]float64{-180.0, 180.0}

	even := true
	for i := 0; i < len(geohash); i++ {
		idx := indexOfBase32(geohash[i])
		if idx == -1 {
			return Bounds{}, fmt.Errorf("invalid geohash character %q in %q", geohash[i], geohash)
		}

		for mask := 16; mask > 0; mask >>= 1 {
			if even {
				mid := (lonRange[0] + lonRange[1]) / 2
				if idx&mask != 0 {
					lonRange[0] = mid
				} else {
					lonRange[1] = mid
				}
			} else {
				mid := (latRange[0] + latRange[1]) / 2
				if idx&mask != 0 {
					latRange[0] = mid
				} else {
					latRange[1] = mid
				}
			}
			even = !even
		}
	}

	return Bounds{North: latRange[1], South: latRange[0], East: lonRange[1], West: lonRange[0]}, nil
}

// DecodeGeohash returns the center point of a geohash cell
func DecodeGeohash(geohash string) (Point, error) {
	b, err := GeohashBounds(geohash)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: (b.North + b.South) / 2, Lon: (b.East + b.West) / 2}, nil
}

// GeohashCellSize returns the approximate cell size in meters for a given precision
func GeohashCellSize(precision int) float64 {
	// Approximate cell sizes at equator
	sizes := map[int]float64{
		1:  5000000,
		2:  625000,
		3:  123000,
		4:  19500,
		5:  3900,
		6:  610,
		7:  120,
		8:  19,
		9:  3.7,
		10: 0.6,
		11: 0.12,
		12: 0.019,
	}

	if size, ok := sizes[precision]; ok {
		return size
	}
	return 0
}

// indexOfBase32 finds the index of a character in the base32 alphabet
func indexOfBase32(ch byte) int {
	for i := 0; i < len(base32); i++ {
		if base32[i] == ch {
			return i
		}
	}
	return -1
}

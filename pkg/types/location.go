package types

// Location is a WGS84 coordinate pair. Embedded into retailer and zone rows.
type Location struct {
	Latitude  float64 `json:"latitude" gorm:"column:latitude;not null" validate:"latitude"`
	Longitude float64 `json:"longitude" gorm:"column:longitude;not null" validate:"longitude"`
}

// Valid reports whether the coordinates fall inside the WGS84 envelope. Stored
// rows can carry garbage from older writers; scans skip invalid centers instead
// of failing.
func (l Location) Valid() bool {
	if l.Latitude < -90 || l.Latitude > 90 {
		return false
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return false
	}
	return true
}

package domain

// Immutable geographic coordinates (longitude, latitude) of a geocoded stop address.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for the matrix API request body.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

package domain

// Coordinates locates a station on the ground.
type Coordinates struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Elevation  float64 `json:"elevation"`   // meters, positive up
	LocalDepth float64 `json:"local_depth"` // sensor burial below surface, meters
}

// Station is one entry of the station inventory.
type Station struct {
	Network  string `json:"network"`
	Code     string `json:"code"`
	Location string `json:"location"`
	Coordinates
}

// InstrumentResponse is a poles-and-zeros description of a channel's
// transfer function, used to reduce digital counts to ground motion.
type InstrumentResponse struct {
	Poles []complex128 `json:"-"`
	Zeros []complex128 `json:"-"`
	// Gain is the normalization factor A0 of the poles-and-zeros stage.
	Gain float64 `json:"gain"`
	// Sensitivity is the overall counts-per-(m/s) scaling.
	Sensitivity float64 `json:"sensitivity"`
}

// StationInventory is the waveform-metadata collaborator: it answers station
// coordinate and instrument response lookups for the traces picks were read
// on. Implementations live outside the domain (file-backed, service-backed).
type StationInventory interface {
	// Stations lists all known stations in a stable order. Encoders rely on
	// the order being stable so emitted files are deterministic.
	Stations() []Station

	// StationCoordinates resolves one station's coordinates.
	StationCoordinates(network, station, location string) (Coordinates, bool)

	// Response resolves the instrument response for one trace. The second
	// return is false when no response metadata is attached.
	Response(wid WaveformID) (InstrumentResponse, bool)
}

// Package inventory implements the station metadata lookup from a JSON
// inventory file: station coordinates plus optional poles-and-zeros
// instrument responses per channel.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tremorlab/seispick/internal/domain"
)

type responseEntry struct {
	Channel     string       `json:"channel"`
	Poles       [][2]float64 `json:"poles"`
	Zeros       [][2]float64 `json:"zeros"`
	Gain        float64      `json:"gain"`
	Sensitivity float64      `json:"sensitivity"`
}

type stationEntry struct {
	domain.Station
	Responses []responseEntry `json:"responses,omitempty"`
}

type inventoryFile struct {
	Stations []stationEntry `json:"stations"`
}

// Inventory is a file-backed domain.StationInventory. Stations keep the
// file order so encoders emit deterministic files.
type Inventory struct {
	stations  []domain.Station
	byKey     map[string]domain.Coordinates
	responses map[string]domain.InstrumentResponse
}

// Load reads a JSON inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return Parse(data)
}

// Parse builds an inventory from JSON bytes.
func Parse(data []byte) (*Inventory, error) {
	var file inventoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}

	inv := &Inventory{
		byKey:     map[string]domain.Coordinates{},
		responses: map[string]domain.InstrumentResponse{},
	}
	for _, entry := range file.Stations {
		if entry.Code == "" {
			return nil, fmt.Errorf("parse inventory: station without a code")
		}
		inv.stations = append(inv.stations, entry.Station)
		inv.byKey[stationKey(entry.Network, entry.Code, entry.Location)] = entry.Coordinates
		for _, resp := range entry.Responses {
			wid := domain.WaveformID{
				Network:  entry.Network,
				Station:  entry.Code,
				Location: entry.Location,
				Channel:  resp.Channel,
			}
			inv.responses[wid.SeedString()] = domain.InstrumentResponse{
				Poles:       toComplex(resp.Poles),
				Zeros:       toComplex(resp.Zeros),
				Gain:        resp.Gain,
				Sensitivity: resp.Sensitivity,
			}
		}
	}
	return inv, nil
}

func (inv *Inventory) Stations() []domain.Station {
	return inv.stations
}

func (inv *Inventory) StationCoordinates(network, station, location string) (domain.Coordinates, bool) {
	c, ok := inv.byKey[stationKey(network, station, location)]
	return c, ok
}

func (inv *Inventory) Response(wid domain.WaveformID) (domain.InstrumentResponse, bool) {
	r, ok := inv.responses[wid.SeedString()]
	return r, ok
}

func stationKey(network, station, location string) string {
	return network + "." + station + "." + location
}

func toComplex(pairs [][2]float64) []complex128 {
	var out []complex128
	for _, p := range pairs {
		out = append(out, complex(p[0], p[1]))
	}
	return out
}

// Package telemetry produces the mocked household readings shown on the
// dashboard. Nothing here talks to real devices.
package telemetry

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

type Metrics struct {
	GlobalActivePower   float64
	GlobalReactivePower float64
	Voltage             float64
	GlobalIntensity     float64
	SubMetering1        float64
	SubMetering2        float64
	SubMetering3        float64
	Timestamp           time.Time
}

type Device struct {
	ID          string
	Name        string
	IsOn        bool
	Devices     int
	PowerUsage  float64
	PowerOnTime *string
}

type Environment struct {
	Humidity    int
	Temperature int
}

type EnergyUsage struct {
	Timestamp  string
	Usage      float64
	Efficiency float64
}

type Dashboard struct {
	Devices     []Device
	Environment Environment
	EnergyData  []EnergyUsage
}

// energySlots are the x-axis labels of the energy chart.
var energySlots = []string{
	"04:30PM", "05:00PM", "05:30PM", "06:00PM", "06:30PM",
	"07:00PM", "07:30PM", "08:00PM", "08:30PM",
}

// Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator draws from src, or from a randomly seeded PCG when src is nil.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src), now: time.Now}
}

func (g *Generator) Metrics() Metrics {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Metrics{
		GlobalActivePower:   g.reading(0, 10),
		GlobalReactivePower: g.reading(0, 1),
		Voltage:             g.reading(230, 250),
		GlobalIntensity:     g.reading(0, 40),
		SubMetering1:        g.reading(0, 2),
		SubMetering2:        g.reading(0, 40),
		SubMetering3:        g.reading(15, 20),
		Timestamp:           g.now(),
	}
}

func (g *Generator) Dashboard() Dashboard {
	g.mu.Lock()
	defer g.mu.Unlock()

	energy := make([]EnergyUsage, 0, len(energySlots))
	for _, slot := range energySlots {
		energy = append(energy, EnergyUsage{
			Timestamp:  slot,
			Usage:      70 + g.rng.Float64()*30,
			Efficiency: 20 + g.rng.Float64()*30,
		})
	}

	return Dashboard{
		Devices:     devices(),
		Environment: Environment{Humidity: 76, Temperature: 24},
		EnergyData:  energy,
	}
}

// ToggleDevice acknowledges a toggle request. Device state is not kept.
func (g *Generator) ToggleDevice(id string) string {
	return fmt.Sprintf("Device %s toggled successfully", id)
}

// reading is uniform in [lo, hi] rounded to three decimals.
func (g *Generator) reading(lo, hi float64) float64 {
	v := lo + g.rng.Float64()*(hi-lo)
	return math.Round(v*1000) / 1000
}

func devices() []Device {
	onTime := func(s string) *string { return &s }

	return []Device{
		{ID: "1", Name: "Air Conditioner", IsOn: true, Devices: 4, PowerUsage: 24.9, PowerOnTime: onTime("14hr 32min")},
		{ID: "2", Name: "Lamp", IsOn: true, Devices: 4, PowerUsage: 24.9},
		{ID: "3", Name: "Audio", IsOn: true, Devices: 4, PowerUsage: 24.9, PowerOnTime: onTime("2hr")},
		{ID: "4", Name: "Refrigerator", IsOn: false, Devices: 4, PowerUsage: 24.9, PowerOnTime: onTime("24hr")},
	}
}

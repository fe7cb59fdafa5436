package dto

import (
	"time"

	"github.com/martijn/homedash/internal/core/telemetry"
)

type MetricsResponse struct {
	GlobalActivePower   float64   `json:"global_active_power"`
	GlobalReactivePower float64   `json:"global_reactive_power"`
	Voltage             float64   `json:"voltage"`
	GlobalIntensity     float64   `json:"global_intensity"`
	SubMetering1        float64   `json:"sub_metering_1"`
	SubMetering2        float64   `json:"sub_metering_2"`
	SubMetering3        float64   `json:"sub_metering_3"`
	Timestamp           time.Time `json:"timestamp"`
}

// Field names below follow the dashboard frontend, which expects camelCase.

type DeviceResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	IsOn        bool    `json:"isOn"`
	Devices     int     `json:"devices"`
	PowerUsage  float64 `json:"powerUsage"`
	PowerOnTime *string `json:"powerOnTime"`
}

type EnvironmentResponse struct {
	Humidity    int `json:"humidity"`
	Temperature int `json:"temperature"`
}

type EnergyUsageResponse struct {
	Timestamp  string  `json:"timestamp"`
	Usage      float64 `json:"usage"`
	Efficiency float64 `json:"efficiency"`
}

type DashboardDataResponse struct {
	Devices     []DeviceResponse      `json:"devices"`
	Environment EnvironmentResponse   `json:"environment"`
	EnergyData  []EnergyUsageResponse `json:"energyData"`
}

func NewMetricsResponse(m telemetry.Metrics) MetricsResponse {
	return MetricsResponse{
		GlobalActivePower:   m.GlobalActivePower,
		GlobalReactivePower: m.GlobalReactivePower,
		Voltage:             m.Voltage,
		GlobalIntensity:     m.GlobalIntensity,
		SubMetering1:        m.SubMetering1,
		SubMetering2:        m.SubMetering2,
		SubMetering3:        m.SubMetering3,
		Timestamp:           m.Timestamp,
	}
}

func NewDashboardDataResponse(d telemetry.Dashboard) DashboardDataResponse {
	devices := make([]DeviceResponse, 0, len(d.Devices))
	for _, dev := range d.Devices {
		devices = append(devices, DeviceResponse{
			ID:          dev.ID,
			Name:        dev.Name,
			IsOn:        dev.IsOn,
			Devices:     dev.Devices,
			PowerUsage:  dev.PowerUsage,
			PowerOnTime: dev.PowerOnTime,
		})
	}

	energy := make([]EnergyUsageResponse, 0, len(d.EnergyData))
	for _, e := range d.EnergyData {
		energy = append(energy, EnergyUsageResponse{
			Timestamp:  e.Timestamp,
			Usage:      e.Usage,
			Efficiency: e.Efficiency,
		})
	}

	return DashboardDataResponse{
		Devices: devices,
		Environment: EnvironmentResponse{
			Humidity:    d.Environment.Humidity,
			Temperature: d.Environment.Temperature,
		},
		EnergyData: energy,
	}
}

package model

type PrinterStation string

const (
	StationKitchen PrinterStation = "KITCHEN"
	StationBar     PrinterStation = "BAR"
	StationReceipt PrinterStation = "RECEIPT"
)

// Printer is a configured ticket printer. Only configuration is replicated;
// talking to the device is out of scope.
type Printer struct {
	ID      string         `json:"id" validate:"required"`
	Name    string         `json:"name" validate:"required"`
	Address string         `json:"address"`
	Station PrinterStation `json:"station" validate:"required,oneof=KITCHEN BAR RECEIPT"`
	Enabled bool           `json:"enabled"`
}

type ConnectionStatus string

const (
	ConnectionConnected    ConnectionStatus = "CONNECTED"
	ConnectionDisconnected ConnectionStatus = "DISCONNECTED"
)

// Connection is an external integration (delivery apps, payment terminals).
type Connection struct {
	ID       string           `json:"id" validate:"required"`
	Name     string           `json:"name" validate:"required"`
	Provider string           `json:"provider"`
	Status   ConnectionStatus `json:"status" validate:"required,oneof=CONNECTED DISCONNECTED"`
	LastSync int64            `json:"lastSync"`
}

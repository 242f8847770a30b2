package types

// OperatingStatus is the normalized operating state of a facility.
type OperatingStatus string

const (
	StatusOpen    OperatingStatus = "OPEN"
	StatusLimited OperatingStatus = "LIMITED"
	StatusClosed  OperatingStatus = "CLOSED"
	StatusUnknown OperatingStatus = "UNKNOWN"
)

// FacilityService is one named service offered by a facility.
type FacilityService struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FacilityContact holds the facility's points of contact.
type FacilityContact struct {
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// FacilityAddress is a facility's physical address.
type FacilityAddress struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
	Full    string `json:"full,omitempty"`
}

// FacilityRecord is the normalized facility shape produced by the directory
// stage, ordered ascending by DistanceMiles.
type FacilityRecord struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	Classification  string            `json:"classification,omitempty"`
	Coordinates     Coordinates       `json:"coordinates"`
	Address         FacilityAddress   `json:"address"`
	DistanceMiles   float64           `json:"distance"`
	Services        []FacilityService `json:"services"`
	HoursByDay      map[string]string `json:"hours,omitempty"`
	OperatingStatus OperatingStatus   `json:"operatingStatus"`
	Contact         FacilityContact   `json:"contact"`
	HasShuttle      bool              `json:"hasShuttle,omitempty"`
	HasParking      bool              `json:"hasParking,omitempty"`
}

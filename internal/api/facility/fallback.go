package facility

// curatedFacilities is the offline dataset of major VA medical centers
// used when the upstream directory is unreachable or no key is set.
func curatedFacilities() []vaFacility {
	entries := []struct {
		id       string
		name     string
		lat, lng float64
		street   string
		city     string
		state    string
		zip      string
		phone    string
		website  string
		services []string
		hours    map[string]string
	}{
		{
			id: "vha_688", name: "Washington DC VA Medical Center",
			lat: 38.9296, lng: -77.0107,
			street: "50 Irving St NW", city: "Washington", state: "DC", zip: "20422",
			phone: "202-745-8000", website: "https://www.va.gov/washington-dc-health-care/",
			services: []string{"Primary Care", "Mental Health Care", "Emergency Care", "Specialty Care"},
			hours: map[string]string{
				"monday": "24/7", "tuesday": "24/7", "wednesday": "24/7",
				"thursday": "24/7", "friday": "24/7", "saturday": "24/7", "sunday": "24/7",
			},
		},
		{
			id: "vha_632", name: "Syracuse VA Medical Center",
			lat: 43.0391, lng: -76.1378,
			street: "800 Irving Ave", city: "Syracuse", state: "NY", zip: "13210",
			phone: "315-425-4400", website: "https://www.va.gov/syracuse-health-care/",
			services: []string{"Primary Care", "Specialty Care", "Mental Health Care"},
			hours: map[string]string{
				"monday": "7:00AM-4:30PM", "tuesday": "7:00AM-4:30PM", "wednesday": "7:00AM-4:30PM",
				"thursday": "7:00AM-4:30PM", "friday": "7:00AM-4:30PM", "saturday": "Closed", "sunday": "Closed",
			},
		},
		{
			id: "vha_512", name: "Baltimore VA Medical Center",
			lat: 39.2904, lng: -76.6122,
			street: "10 N Greene St", city: "Baltimore", state: "MD", zip: "21201",
			phone: "410-605-7000", website: "https://www.va.gov/baltimore-health-care/",
			services: []string{"Primary Care", "Emergency Care", "Specialty Care"},
		},
		{
			id: "vha_652", name: "Richmond VA Medical Center",
			lat: 37.5407, lng: -77.4360,
			street: "1201 Broad Rock Blvd", city: "Richmond", state: "VA", zip: "23249",
			phone: "804-675-5000", website: "https://www.va.gov/richmond-health-care/",
			services: []string{"Primary Care", "Mental Health Care"},
		},
		{
			id: "vha_642", name: "Philadelphia VA Medical Center",
			lat: 39.9526, lng: -75.1652,
			street: "3900 Woodland Ave", city: "Philadelphia", state: "PA", zip: "19104",
			phone: "215-823-5800", website: "https://www.va.gov/philadelphia-health-care/",
			services: []string{"Primary Care", "Specialty Care"},
		},
	}

	out := make([]vaFacility, 0, len(entries))
	for _, e := range entries {
		var f vaFacility
		f.ID = e.id
		f.Attributes.Name = e.name
		f.Attributes.Lat = e.lat
		f.Attributes.Long = e.lng
		f.Attributes.Classification = "VA Medical Center (VAMC)"
		f.Attributes.FacilityType = "va_health_facility"
		f.Attributes.Address.Physical.Address1 = e.street
		f.Attributes.Address.Physical.City = e.city
		f.Attributes.Address.Physical.State = e.state
		f.Attributes.Address.Physical.Zip = e.zip
		f.Attributes.Phone.Main = e.phone
		f.Attributes.Website = e.website
		f.Attributes.Hours = e.hours
		f.Attributes.OperatingStatus.Code = "NORMAL"
		for _, s := range e.services {
			f.Attributes.Services.Health = append(f.Attributes.Services.Health, struct {
				Name string `json:"name"`
			}{Name: s})
		}
		out = append(out, f)
	}
	return out
}

package models

import "fmt"

// Address is a delivery address owned by the API.
type Address struct {
	ID        uint   `json:"id"`
	Village   string `json:"village"`
	Mandal    string `json:"mandal"`
	District  string `json:"district"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// String renders the address on one line.
func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s, %s - %s", a.Village, a.Mandal, a.District, a.State, a.Pincode)
}

package entity

// Account is a cloud vendor account as listed by the cost-management API.
type Account struct {
	VendorAccountID   string `json:"vendorAccountId"`
	VendorAccountName string `json:"vendorAccountName"`
}

// AccountDirectory maps a vendor account ID to its display name.
type AccountDirectory map[string]string

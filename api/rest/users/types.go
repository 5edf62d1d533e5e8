package users

// the caller's credit balances
type CreditsResponse struct {
	Credits   int `json:"credits"`
	Reserved  int `json:"reserved"`
	Available int `json:"available"`
}

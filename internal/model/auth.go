package model

// AccessToken is the object carried in the access token.
type AccessToken struct {
	ID    string `json:"id"`
	Staff bool   `json:"staff"`
}

package model

// Subject represents a teachable subject (Mathematics, Biology, ...).
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

package dto

import "time"

type CustomerInput struct {
	StoreID string
	Name    string
	Email   *string
	Phone   *string
	Address *string
	Notes   string
}

type PetInput struct {
	CustomerID string
	Name       string
	Species    string
	Breed      *string
	BirthDate  *time.Time
	Weight     *float64
	Notes      string
}

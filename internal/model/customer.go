package model

import "time"

type Customer struct {
	BaseModel
	StoreID string  `db:"store_id" json:"store_id"`
	Name    string  `db:"name" json:"name"`
	Email   *string `db:"email" json:"email"`
	Phone   *string `db:"phone" json:"phone"`
	Address *string `db:"address" json:"address"`
	Notes   string  `db:"notes" json:"notes"`
	Pets    []Pet   `db:"-" json:"pets"`
}

type Pet struct {
	BaseModel
	CustomerID string     `db:"customer_id" json:"customer_id"`
	Name       string     `db:"name" json:"name"`
	Species    string     `db:"species" json:"species"`
	Breed      *string    `db:"breed" json:"breed"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date"`
	Weight     *float64   `db:"weight" json:"weight"`
	Notes      string     `db:"notes" json:"notes"`
}

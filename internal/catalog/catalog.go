// Package catalog describes clothing items offered for try-on and size recommendation.
package catalog

import (
	"github.com/spigell/fitting-room/internal/sizing"
)

// Category of a clothing item.
type Category string

const (
	CategoryShirt       Category = "shirt"
	CategoryPants       Category = "pants"
	CategoryDress       Category = "dress"
	CategoryJacket      Category = "jacket"
	CategorySkirt       Category = "skirt"
	CategoryShorts      Category = "shorts"
	CategorySweater     Category = "sweater"
	CategorySuit        Category = "suit"
	CategoryAccessories Category = "accessories"
)

// Item is a clothing item with its purchasable sizes.
type Item struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Brand       string          `json:"brand" yaml:"brand"`
	Category    Category        `json:"category" yaml:"category"`
	Gender      string          `json:"gender,omitempty" yaml:"gender"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Images      []string        `json:"images,omitempty" yaml:"images"`
	Sizes       []sizing.Option `json:"sizes" yaml:"sizes"`
}

// PrimaryImage returns the first image reference of the item, or "".
func (i *Item) PrimaryImage() string {
	if i == nil || len(i.Images) == 0 {
		return ""
	}
	return i.Images[0]
}

// Summary is the short form of an item used in listings.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

func (i *Item) Summary() Summary {
	return Summary{ID: i.ID, Name: i.Name, Brand: i.Brand}
}

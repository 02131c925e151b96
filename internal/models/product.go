package models

import "time"

// Product represents a product in the store. Price is in minor currency
// units (centimes).
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null" validate:"required,min=3,max=200"`
	Description string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Price       int64     `json:"price" gorm:"not null" validate:"gte=0"`
	ImageURL    string    `json:"imageUrl" gorm:"type:varchar(500)" validate:"omitempty,url"`
	Category    string    `json:"category" gorm:"type:varchar(100);index" validate:"required,max=100"`
	Subcategory string    `json:"subcategory" gorm:"type:varchar(100);index" validate:"omitempty,max=100"`
	Stock       int       `json:"stock" gorm:"not null;default:0;check:stock >= 0" validate:"gte=0"`
	Featured    bool      `json:"featured" gorm:"default:false;index"`
	Discount    int       `json:"discount" gorm:"not null;default:0" validate:"gte=0,lte=100"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductPatch carries the fields of a partial product update. Nil fields are
// left untouched.
type ProductPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Subcategory *string `json:"subcategory" validate:"omitempty,max=100"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
	Featured    *bool   `json:"featured"`
	Discount    *int    `json:"discount" validate:"omitempty,gte=0,lte=100"`
}

// Apply copies the set fields of the patch onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.ImageURL != nil {
		p.ImageURL = *pp.ImageURL
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Subcategory != nil {
		p.Subcategory = *pp.Subcategory
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.Featured != nil {
		p.Featured = *pp.Featured
	}
	if pp.Discount != nil {
		p.Discount = *pp.Discount
	}
}

// Columns returns the set fields of the patch keyed by column name.
func (pp ProductPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if pp.Name != nil {
		cols["name"] = *pp.Name
	}
	if pp.Description != nil {
		cols["description"] = *pp.Description
	}
	if pp.Price != nil {
		cols["price"] = *pp.Price
	}
	if pp.ImageURL != nil {
		cols["image_url"] = *pp.ImageURL
	}
	if pp.Category != nil {
		cols["category"] = *pp.Category
	}
	if pp.Subcategory != nil {
		cols["subcategory"] = *pp.Subcategory
	}
	if pp.Stock != nil {
		cols["stock"] = *pp.Stock
	}
	if pp.Featured != nil {
		cols["featured"] = *pp.Featured
	}
	if pp.Discount != nil {
		cols["discount"] = *pp.Discount
	}
	return cols
}

// ProductFilter narrows a catalog listing. Zero values match everything.
type ProductFilter struct {
	Category     string
	Subcategory  string
	FeaturedOnly bool
}

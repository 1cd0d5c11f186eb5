package models

import "time"

// User is a storefront account as listed by the bakery API.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Contact is a submission of the public contact form.
type Contact struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message" binding:"required,min=5"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// AdminSession is what an admin login resolves to.
type AdminSession struct {
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	UpstreamToken string `json:"-"`
}

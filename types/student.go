package types

import "time"

// Student is a roster entry. Optional fields are pointers so an absent
// value is stored as SQL NULL rather than an empty string.
type Student struct {
	// ID is the unique identifier of the student.
	ID int `json:"id" db:"id"`

	// FullName is the student's full name. Required.
	FullName string `json:"full_name" db:"full_name"`

	// Age is the student's age, if known.
	Age *int `json:"age,omitempty" db:"age"`

	// Phone is a contact phone number, if known.
	Phone *string `json:"phone,omitempty" db:"phone"`

	// Email is a contact address, if known.
	Email *string `json:"email,omitempty" db:"email"`

	// Level is a free-form level or category label ("A2", "beginner").
	Level *string `json:"level,omitempty" db:"level"`

	// Photo is the generated storage name of an uploaded photo.
	Photo *string `json:"photo,omitempty" db:"photo"`

	// PaidUntil is a free-text payment marker maintained by staff.
	PaidUntil *string `json:"paid_until,omitempty" db:"paid_until"`

	// CreatedAt is the timestamp when the student was added.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

package model

import (
	"fmt"
	"time"
)

// Author represents a book author.
type Author struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Bio         string     `json:"bio,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	BirthDate   string     `json:"birth_date,omitempty"`
	DeathDate   string     `json:"death_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	BookCount int `json:"book_count,omitempty"`
}

// Field limits.
const (
	MaxAuthorNameLength        = 100
	MaxAuthorBioLength         = 1000
	MaxAuthorNationalityLength = 50
)

// DateFormat is the wire and storage format for date-only fields.
const DateFormat = "2006-01-02"

// ValidateAuthor checks author fields against domain rules.
// Dates are date-only strings in DateFormat; empty means unset.
func ValidateAuthor(name, bio, nationality, birthDate, deathDate string) error {
	if name == "" {
		return fmt.Errorf("name required")
	}
	if len(name) > MaxAuthorNameLength {
		return fmt.Errorf("name too long (max %d)", MaxAuthorNameLength)
	}
	if len(bio) > MaxAuthorBioLength {
		return fmt.Errorf("bio too long (max %d)", MaxAuthorBioLength)
	}
	if len(nationality) > MaxAuthorNationalityLength {
		return fmt.Errorf("nationality too long (max %d)", MaxAuthorNationalityLength)
	}

	today := time.Now().Format(DateFormat)

	var born time.Time
	if birthDate != "" {
		var err error
		born, err = time.Parse(DateFormat, birthDate)
		if err != nil {
			return fmt.Errorf("invalid birth_date")
		}
		if birthDate > today {
			return fmt.Errorf("birth_date cannot be in the future")
		}
	}

	if deathDate != "" {
		died, err := time.Parse(DateFormat, deathDate)
		if err != nil {
			return fmt.Errorf("invalid death_date")
		}
		if deathDate > today {
			return fmt.Errorf("death_date cannot be in the future")
		}
		if birthDate != "" && !died.After(born) {
			return fmt.Errorf("death_date must be after birth_date")
		}
	}

	return nil
}

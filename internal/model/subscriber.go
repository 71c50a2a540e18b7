// Package model defines the data structures used throughout the application.
package model

// Subscriber is one row of the mailing list: a person who signed up once.
//
// The interest flags are independent booleans. Any non-empty subset may be set,
// and a flag that was not selected stays false.
type Subscriber struct {
	ID            int64  `json:"id"            db:"id"`
	Name          string `json:"name"          db:"name"`
	Email         string `json:"email"         db:"email"`
	Band          bool   `json:"band"          db:"band"`
	Choir         bool   `json:"choir"         db:"choir"`
	SummerMusical bool   `json:"summerMusical" db:"summerMusical"`
}

// Interest is one of the closed set of categories a subscriber can opt into.
type Interest string

const (
	InterestBand          Interest = "band"
	InterestChoir         Interest = "choir"
	InterestSummerMusical Interest = "summerMusical"
)

// Interests lists every known interest in display order.
var Interests = []Interest{InterestBand, InterestChoir, InterestSummerMusical}

// ParseInterest maps a tag to a known Interest. Tags are case-sensitive,
// so "Band" is not "band".
func ParseInterest(tag string) (Interest, bool) {
	for _, i := range Interests {
		if string(i) == tag {
			return i, true
		}
	}
	return "", false
}

// HasInterest reports whether the subscriber opted into i.
func (s *Subscriber) HasInterest(i Interest) bool {
	switch i {
	case InterestBand:
		return s.Band
	case InterestChoir:
		return s.Choir
	case InterestSummerMusical:
		return s.SummerMusical
	}
	return false
}

// SetInterest turns on the flag for i. Unknown interests are ignored.
func (s *Subscriber) SetInterest(i Interest) {
	switch i {
	case InterestBand:
		s.Band = true
	case InterestChoir:
		s.Choir = true
	case InterestSummerMusical:
		s.SummerMusical = true
	}
}

// AnyInterest reports whether at least one flag is set.
func (s *Subscriber) AnyInterest() bool {
	return s.Band || s.Choir || s.SummerMusical
}

package theory

// Groove is the rhythmic feel tag carried by a song spec.
type Groove int

const (
	Straight Groove = iota
	Chill
	Driving
)

func (g Groove) String() string {
	switch g {
	case Straight:
		return "straight"
	case Chill:
		return "chill"
	case Driving:
		return "driving"
	default:
		return "unknown"
	}
}

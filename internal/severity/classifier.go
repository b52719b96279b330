package severity

// Level is a coarse severity class for a magnitude.
type Level string

const (
	Micro    Level = "micro"
	Minor    Level = "minor"
	Moderate Level = "moderate"
	Major    Level = "major"
)

// Classifier maps magnitudes to levels using lower-inclusive thresholds
type Classifier struct {
	minorThreshold    float64
	moderateThreshold float64
	majorThreshold    float64
}

// NewClassifier creates a classifier with the given thresholds
func NewClassifier(minor, moderate, major float64) *Classifier {
	return &Classifier{
		minorThreshold:    minor,
		moderateThreshold: moderate,
		majorThreshold:    major,
	}
}

// Default classifies at 3, 5 and 7.
var Default = NewClassifier(3, 5, 7)

// Classify returns the level for magnitude
func (c *Classifier) Classify(magnitude float64) Level {
	switch {
	case magnitude >= c.majorThreshold:
		return Major
	case magnitude >= c.moderateThreshold:
		return Moderate
	case magnitude >= c.minorThreshold:
		return Minor
	default:
		return Micro
	}
}

// Classify uses the Default classifier.
func Classify(magnitude float64) Level {
	return Default.Classify(magnitude)
}

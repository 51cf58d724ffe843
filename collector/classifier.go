package collector

import "github.com/jaipkapoor99/GamingLog/models"

// Classifier decides whether a single process snapshot belongs to a
// tracked game. Implementations are pure: classifying the same snapshot
// twice yields the same result.
type Classifier interface {
	Classify(snap models.ProcessSnapshot) (models.GameIdentity, bool)
}

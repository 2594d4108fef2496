package domain

// Step identifies one of the five wizard screens, in traversal order.
type Step string

const (
	StepBody    Step = "body"
	StepFood    Step = "food"
	StepSleep   Step = "sleep"
	StepActive  Step = "active"
	StepSummary Step = "summary"
)

// DefaultSex is used whenever the accumulator holds no sex value.
const DefaultSex = "male"

// SessionRecord is the accumulated set of one user's answers across the
// wizard. All fields are optional; readers apply defaults via the accessor
// methods below. Age and Weight hold the submitted text verbatim — Weight
// is coerced to a number only at derivation time.
type SessionRecord struct {
	Age         string
	Sex         string
	Weight      string
	Breakfast   string
	SleepHours  *float64
	SleepResult string
	SleepAdvice string
}

// SexOrDefault returns the stored sex, or DefaultSex when unset.
func (r SessionRecord) SexOrDefault() string {
	if r.Sex == "" {
		return DefaultSex
	}
	return r.Sex
}

// BreakfastYes reports whether the user answered yes to breakfast.
// An unset value reads as no.
func (r SessionRecord) BreakfastYes() bool {
	return r.Breakfast == "yes"
}

// IsZero reports whether no field has been written yet.
func (r SessionRecord) IsZero() bool {
	return r == SessionRecord{}
}

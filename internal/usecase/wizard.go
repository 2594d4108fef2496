package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"health-wizard/internal/derive"
	"health-wizard/internal/domain"
)

// SleepValidationMessage is the literal error shown when the Sleep step
// receives non-numeric input.
const SleepValidationMessage = "Please enter a numeric value."

// RecordStore is the session accumulator consumed by the wizard.
type RecordStore interface {
	Load(ctx context.Context, sessionID string) (domain.SessionRecord, error)
	Save(ctx context.Context, sessionID string, rec domain.SessionRecord) error
}

// Rendering describes the screen to present after a show or submit
// operation, with every value the templates can reference. Fields not
// meaningful for the step are left at their zero value.
type Rendering struct {
	Step               domain.Step
	KcalTarget         int
	KcalBreakfast      int
	AverageSleep       float64
	SleepError         string
	SleepResult        string
	RecommendedMinutes int
	TotalMinutes       float64
	DidEnough          bool
	BreakfastYes       bool
	AIComment          string
}

// WizardService sequences the five wizard screens. It is stateless about
// position: every operation reads whatever the accumulator holds and
// degrades to defaults, so each screen works on a fresh session too.
type WizardService struct {
	store   RecordStore
	comment string
}

// NewWizardService creates the wizard around a session store and the
// process-wide advisory comment. An empty comment falls back to
// FallbackComment so the summary is never blank.
func NewWizardService(store RecordStore, advisoryComment string) (*WizardService, error) {
	if store == nil {
		return nil, errors.New("usecase: record store must not be nil")
	}
	advisoryComment = strings.TrimSpace(advisoryComment)
	if advisoryComment == "" {
		advisoryComment = FallbackComment
	}
	return &WizardService{store: store, comment: advisoryComment}, nil
}

// Show renders a step's initial form from the current accumulator content.
// It never fails on an empty session; the summary has no direct rendering.
func (s *WizardService) Show(ctx context.Context, sessionID string, step domain.Step) (Rendering, error) {
	switch step {
	case domain.StepBody:
		return Rendering{Step: domain.StepBody}, nil
	case domain.StepFood:
		rec, err := s.load(ctx, sessionID)
		if err != nil {
			return Rendering{}, err
		}
		return s.foodRendering(rec), nil
	case domain.StepSleep:
		return s.sleepRendering(""), nil
	case domain.StepActive:
		rec, err := s.load(ctx, sessionID)
		if err != nil {
			return Rendering{}, err
		}
		return s.activeRendering(rec), nil
	default:
		return Rendering{}, newError(ErrorInvalidInput, "unknown_step", nil)
	}
}

// SubmitBody stores age verbatim, sex with its default, and weight as raw
// text, then renders the Food screen with the derived calorie figures.
// This transition always succeeds.
func (s *WizardService) SubmitBody(ctx context.Context, sessionID string, form url.Values) (Rendering, error) {
	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return Rendering{}, err
	}

	rec.Age = strings.TrimSpace(form.Get("age"))
	rec.Sex = form.Get("sex")
	if rec.Sex == "" {
		rec.Sex = domain.DefaultSex
	}
	rec.Weight = strings.TrimSpace(form.Get("weight"))

	if err := s.save(ctx, sessionID, rec); err != nil {
		return Rendering{}, err
	}
	return s.foodRendering(rec), nil
}

// SubmitFood stores the breakfast answer, normalized to {yes,no}, and
// renders the Sleep screen. This transition always succeeds.
func (s *WizardService) SubmitFood(ctx context.Context, sessionID string, form url.Values) (Rendering, error) {
	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return Rendering{}, err
	}

	breakfast := form.Get("breakfast")
	if breakfast != "yes" {
		breakfast = "no"
	}
	rec.Breakfast = breakfast

	if err := s.save(ctx, sessionID, rec); err != nil {
		return Rendering{}, err
	}
	return s.sleepRendering(""), nil
}

// SubmitSleep parses sleep hours strictly. Non-numeric input re-renders the
// Sleep screen with a validation message and leaves the accumulator
// untouched; a valid value stores hours plus the comparison texts and
// renders the Active screen.
func (s *WizardService) SubmitSleep(ctx context.Context, sessionID string, form url.Values) (Rendering, error) {
	hours, err := derive.ParseSleepHours(form.Get("sleep_hours"))
	if err != nil {
		return s.sleepRendering(SleepValidationMessage), nil
	}

	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return Rendering{}, err
	}

	cmp := derive.CompareSleep(hours, derive.AverageSleepHours)
	rec.SleepHours = &hours
	rec.SleepResult = cmp.Narrative
	rec.SleepAdvice = cmp.Advice

	if err := s.save(ctx, sessionID, rec); err != nil {
		return Rendering{}, err
	}
	return s.activeRendering(rec), nil
}

// SubmitActive coerces the four activity durations leniently, derives the
// exercise adequacy and calorie figures, and renders the terminal Summary
// screen. Activity inputs are not persisted.
func (s *WizardService) SubmitActive(ctx context.Context, sessionID string, form url.Values) (Rendering, error) {
	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return Rendering{}, err
	}

	hours := derive.ActivityHours{
		Muscle: derive.FloatOrZero(form.Get("h_muscle")),
		Run:    derive.FloatOrZero(form.Get("h_run")),
		Walk:   derive.FloatOrZero(form.Get("h_walk")),
		Other:  derive.FloatOrZero(form.Get("h_other")),
	}
	minutes, met := derive.ExerciseAdequacy(hours, derive.RecommendedExerciseMinutes)
	target, breakfast := kcalFigures(rec)

	return Rendering{
		Step:               domain.StepSummary,
		KcalTarget:         target,
		KcalBreakfast:      breakfast,
		RecommendedMinutes: derive.RecommendedExerciseMinutes,
		TotalMinutes:       minutes,
		DidEnough:          met,
		BreakfastYes:       rec.BreakfastYes(),
		AIComment:          s.comment,
	}, nil
}

func (s *WizardService) foodRendering(rec domain.SessionRecord) Rendering {
	target, breakfast := kcalFigures(rec)
	return Rendering{
		Step:          domain.StepFood,
		KcalTarget:    target,
		KcalBreakfast: breakfast,
	}
}

func (s *WizardService) sleepRendering(errMsg string) Rendering {
	return Rendering{
		Step:         domain.StepSleep,
		AverageSleep: derive.AverageSleepHours,
		SleepError:   errMsg,
	}
}

func (s *WizardService) activeRendering(rec domain.SessionRecord) Rendering {
	return Rendering{
		Step:        domain.StepActive,
		SleepResult: rec.SleepResult,
	}
}

func kcalFigures(rec domain.SessionRecord) (target, breakfast int) {
	weight := derive.FloatOrZero(rec.Weight)
	target = derive.DailyCalorieTarget(rec.SexOrDefault(), weight)
	return target, derive.BreakfastAllotment(target)
}

func (s *WizardService) load(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return domain.SessionRecord{}, newError(ErrorInternal, "session_load_error", err)
	}
	return rec, nil
}

func (s *WizardService) save(ctx context.Context, sessionID string, rec domain.SessionRecord) error {
	if err := s.store.Save(ctx, sessionID, rec); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}
	return nil
}

package quiz

import (
	"errors"
	"testing"
)

func forestQuiz() *Quiz {
	return &Quiz{
		ID:    "forest_guardian",
		Title: "Forest Guardian",
		Questions: []Question{
			{Prompt: "2+2?", Answers: []string{"3", "4"}, CorrectAnswer: 1},
			{Prompt: "Capital of sky?", Answers: []string{"Cloud", "Moon", "Sun"}, CorrectAnswer: 0},
			{Prompt: "Color of grass?", Answers: []string{"Green", "Blue"}, CorrectAnswer: 0},
		},
		DamageToEnemy:  1,
		DamageToPlayer: 1,
	}
}

func TestQuizValidate(t *testing.T) {
	q := forestQuiz()
	if err := q.Validate(); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}

	bad := forestQuiz()
	bad.Questions[1].CorrectAnswer = 3
	if err := bad.Validate(); err == nil {
		t.Error("expected error for out-of-range correct answer")
	}

	bad = forestQuiz()
	bad.Questions = nil
	if err := bad.Validate(); err == nil {
		t.Error("expected error for quiz without questions")
	}

	bad = forestQuiz()
	bad.DamageToEnemy = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for non-positive damage")
	}
}

func TestNewRoundArguments(t *testing.T) {
	if _, err := NewRound(forestQuiz(), 0, 3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero enemy hp, got %v", err)
	}
	if _, err := NewRound(forestQuiz(), 3, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative player hp, got %v", err)
	}
}

func TestCorrectAnswerDamagesEnemy(t *testing.T) {
	r, err := NewRound(forestQuiz(), 3, 3)
	if err != nil {
		t.Fatalf("new round failed: %v", err)
	}

	res, err := r.Answer(1)
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if !res.Correct || res.EnemyHP != 2 || res.PlayerHP != 3 {
		t.Errorf("unexpected result: %+v", res)
	}

	q, err := r.Current()
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if q.Prompt != "Capital of sky?" {
		t.Errorf("expected second question, got %q", q.Prompt)
	}
}

func TestWrongAnswerDamagesPlayer(t *testing.T) {
	r, _ := NewRound(forestQuiz(), 3, 3)

	res, err := r.Answer(0) // wrong for question 0
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if res.Correct || res.PlayerHP != 2 || res.EnemyHP != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestAnswerOutOfRangeKeepsQuestion(t *testing.T) {
	r, _ := NewRound(forestQuiz(), 3, 3)

	if _, err := r.Answer(5); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}

	q, err := r.Current()
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if q.Prompt != "2+2?" {
		t.Errorf("bad answer consumed the question, now at %q", q.Prompt)
	}
}

func TestVictory(t *testing.T) {
	r, _ := NewRound(forestQuiz(), 2, 3)

	if _, err := r.Answer(1); err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	res, err := r.Answer(0)
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if res.Outcome != OutcomeVictory || !r.Done() {
		t.Errorf("expected victory, got %+v", res)
	}

	if _, err := r.Answer(0); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState after round end, got %v", err)
	}
	if _, err := r.Current(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState from Current, got %v", err)
	}
}

func TestDefeat(t *testing.T) {
	r, _ := NewRound(forestQuiz(), 3, 1)

	res, err := r.Answer(0) // wrong
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if res.Outcome != OutcomeDefeat {
		t.Errorf("expected defeat, got %s", res.Outcome)
	}
}

func TestExhausted(t *testing.T) {
	r, _ := NewRound(forestQuiz(), 10, 10)

	answers := []int{1, 0, 0} // all correct
	var res Result
	var err error
	for _, a := range answers {
		res, err = r.Answer(a)
		if err != nil {
			t.Fatalf("answer failed: %v", err)
		}
	}
	if res.Outcome != OutcomeExhausted {
		t.Errorf("expected exhausted outcome, got %s", res.Outcome)
	}
	if res.EnemyHP != 7 {
		t.Errorf("expected enemy hp 7, got %d", res.EnemyHP)
	}
}

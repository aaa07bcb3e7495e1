// Package quiz implements the quiz-based combat minigame: an enemy poses
// authored questions, correct answers damage the enemy, wrong answers
// damage the player.
package quiz

import (
	"errors"
	"fmt"
)

// Question is one authored quiz entry.
type Question struct {
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Answers       []string `json:"answers" yaml:"answers"`
	CorrectAnswer int      `json:"correct_answer" yaml:"correct_answer"`
}

// Quiz is immutable authored data for one enemy's question set.
type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`

	// Damage applied per answer.
	DamageToEnemy  int `json:"damage_to_enemy" yaml:"damage_to_enemy"`
	DamageToPlayer int `json:"damage_to_player" yaml:"damage_to_player"`
}

var (
	// ErrInvalidArgument indicates a bad answer index or round parameter.
	ErrInvalidArgument = errors.New("quiz: invalid argument")
	// ErrInvalidState indicates an operation on a finished round.
	ErrInvalidState = errors.New("quiz: invalid state")
)

// Validate checks authored invariants.
func (q *Quiz) Validate() error {
	if q.ID == "" {
		return errors.New("quiz id is required")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %q has no questions", q.ID)
	}
	if q.DamageToEnemy <= 0 || q.DamageToPlayer <= 0 {
		return fmt.Errorf("quiz %q: damage values must be positive", q.ID)
	}
	for i, question := range q.Questions {
		if len(question.Answers) < 2 {
			return fmt.Errorf("quiz %q question %d needs at least 2 answers", q.ID, i)
		}
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Answers) {
			return fmt.Errorf("quiz %q question %d: correct answer %d out of range", q.ID, i, question.CorrectAnswer)
		}
	}
	return nil
}

// Outcome is the terminal result of a round.
type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	// OutcomeVictory means the enemy's hit points reached zero.
	OutcomeVictory Outcome = "victory"
	// OutcomeDefeat means the player's hit points reached zero.
	OutcomeDefeat Outcome = "defeat"
	// OutcomeExhausted means the questions ran out with both sides standing.
	OutcomeExhausted Outcome = "exhausted"
)

// Round is one quiz encounter in progress. Questions are asked in authored
// order. A round is owned by a single interaction flow.
type Round struct {
	quiz     *Quiz
	index    int
	enemyHP  int
	playerHP int
	outcome  Outcome
}

// NewRound starts an encounter against quiz with the given hit points.
func NewRound(q *Quiz, enemyHP, playerHP int) (*Round, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidArgument)
	}
	if enemyHP <= 0 || playerHP <= 0 {
		return nil, fmt.Errorf("hit points must be positive (enemy=%d player=%d): %w", enemyHP, playerHP, ErrInvalidArgument)
	}
	return &Round{
		quiz:     q,
		enemyHP:  enemyHP,
		playerHP: playerHP,
		outcome:  OutcomeInProgress,
	}, nil
}

// Quiz returns the authored quiz this round plays.
func (r *Round) Quiz() *Quiz { return r.quiz }

// EnemyHP returns the enemy's remaining hit points.
func (r *Round) EnemyHP() int { return r.enemyHP }

// PlayerHP returns the player's remaining hit points.
func (r *Round) PlayerHP() int { return r.playerHP }

// Outcome returns the round's result so far.
func (r *Round) Outcome() Outcome { return r.outcome }

// Done reports whether the round has finished.
func (r *Round) Done() bool { return r.outcome != OutcomeInProgress }

// Current returns the question awaiting an answer.
func (r *Round) Current() (*Question, error) {
	if r.Done() {
		return nil, fmt.Errorf("round is %s: %w", r.outcome, ErrInvalidState)
	}
	return &r.quiz.Questions[r.index], nil
}

// Result reports what a single answer did.
type Result struct {
	Correct  bool    `json:"correct"`
	EnemyHP  int     `json:"enemy_hp"`
	PlayerHP int     `json:"player_hp"`
	Outcome  Outcome `json:"outcome"`
}

// Answer submits answerIndex for the current question, applies damage, and
// advances to the next question. An out-of-range index fails without
// consuming the question.
func (r *Round) Answer(answerIndex int) (Result, error) {
	if r.Done() {
		return Result{}, fmt.Errorf("round is %s: %w", r.outcome, ErrInvalidState)
	}
	question := &r.quiz.Questions[r.index]
	if answerIndex < 0 || answerIndex >= len(question.Answers) {
		return Result{}, fmt.Errorf("answer index %d out of range [0,%d): %w", answerIndex, len(question.Answers), ErrInvalidArgument)
	}

	correct := answerIndex == question.CorrectAnswer
	if correct {
		r.enemyHP -= r.quiz.DamageToEnemy
		if r.enemyHP < 0 {
			r.enemyHP = 0
		}
	} else {
		r.playerHP -= r.quiz.DamageToPlayer
		if r.playerHP < 0 {
			r.playerHP = 0
		}
	}
	r.index++

	switch {
	case r.enemyHP == 0:
		r.outcome = OutcomeVictory
	case r.playerHP == 0:
		r.outcome = OutcomeDefeat
	case r.index >= len(r.quiz.Questions):
		r.outcome = OutcomeExhausted
	}

	return Result{
		Correct:  correct,
		EnemyHP:  r.enemyHP,
		PlayerHP: r.playerHP,
		Outcome:  r.outcome,
	}, nil
}

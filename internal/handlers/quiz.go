package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/questkit/quest-engine/internal/content"
	"github.com/questkit/quest-engine/pkg/quiz"
)

type StartRoundRequest struct {
	QuizID   string `json:"quiz_id"`
	EnemyHP  int    `json:"enemy_hp"`
	PlayerHP int    `json:"player_hp"`
}

type AnswerRequest struct {
	Answer int `json:"answer"`
}

// QuestionView hides the correct answer from clients.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Answers []string `json:"answers"`
}

type RoundResponse struct {
	RoundID  uuid.UUID     `json:"round_id"`
	QuizID   string        `json:"quiz_id"`
	Title    string        `json:"title"`
	EnemyHP  int           `json:"enemy_hp"`
	PlayerHP int           `json:"player_hp"`
	Outcome  quiz.Outcome  `json:"outcome"`
	Question *QuestionView `json:"question,omitempty"`
	Result   *quiz.Result  `json:"result,omitempty"`
}

// QuizHandler runs quiz combat rounds. Rounds are transient combat state:
// they live in process memory, not in storage, and are discarded when they
// finish.
//
// Routes:
// POST /v1/quiz/rounds              - Start a round
// GET  /v1/quiz/rounds/{id}         - Read a round
// POST /v1/quiz/rounds/{id}/answer  - Answer the current question
type QuizHandler struct {
	library *content.Library
	logger  *slog.Logger

	mu     sync.Mutex
	rounds map[uuid.UUID]*quiz.Round
}

func NewQuizHandler(library *content.Library, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{
		library: library,
		logger:  logger,
		rounds:  make(map[uuid.UUID]*quiz.Round),
	}
}

func (h *QuizHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/quiz/rounds"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleStart(w, r)
		return
	}

	parts := strings.Split(path, "/")
	roundID, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid round ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, roundID)
	case len(parts) == 2 && parts[1] == "answer" && r.Method == http.MethodPost:
		h.handleAnswer(w, r, roundID)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *QuizHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	q := h.library.Quiz(req.QuizID)
	if q == nil {
		writeError(w, h.logger, http.StatusNotFound, "Quiz not found: "+req.QuizID)
		return
	}

	round, err := quiz.NewRound(q, req.EnemyHP, req.PlayerHP)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	id := uuid.New()
	h.mu.Lock()
	h.rounds[id] = round
	h.mu.Unlock()

	writeJSON(w, h.logger, http.StatusCreated, h.roundView(id, req.QuizID, round, nil))
}

func (h *QuizHandler) handleRead(w http.ResponseWriter, roundID uuid.UUID) {
	h.mu.Lock()
	round, ok := h.rounds[roundID]
	h.mu.Unlock()
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "Round not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.roundView(roundID, round.Quiz().ID, round, nil))
}

func (h *QuizHandler) handleAnswer(w http.ResponseWriter, r *http.Request, roundID uuid.UUID) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mu.Lock()
	round, ok := h.rounds[roundID]
	h.mu.Unlock()
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "Round not found")
		return
	}

	result, err := round.Answer(req.Answer)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if round.Done() {
		h.mu.Lock()
		delete(h.rounds, roundID)
		h.mu.Unlock()
	}

	writeJSON(w, h.logger, http.StatusOK, h.roundView(roundID, round.Quiz().ID, round, &result))
}

func (h *QuizHandler) roundView(id uuid.UUID, quizID string, round *quiz.Round, result *quiz.Result) RoundResponse {
	resp := RoundResponse{
		RoundID:  id,
		QuizID:   quizID,
		Title:    round.Quiz().Title,
		EnemyHP:  round.EnemyHP(),
		PlayerHP: round.PlayerHP(),
		Outcome:  round.Outcome(),
		Result:   result,
	}
	if q, err := round.Current(); err == nil {
		resp.Question = &QuestionView{Prompt: q.Prompt, Answers: q.Answers}
	}
	return resp
}

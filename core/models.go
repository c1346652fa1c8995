package core

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DatasetEntry is one benchmark case: a question with its gold answer.
type DatasetEntry struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// Fingerprint identifies the entry's content independent of its ID.
func (e *DatasetEntry) Fingerprint() ID {
	return IDFromContent(e.Category + "\x00" + e.Instruction + "\x00" + e.Input + "\x00" + e.Output)
}

// ScoreReport holds the five scores of one gold/predicted comparison.
// Every value is in [0, 1].
type ScoreReport struct {
	Relevance          float64 `json:"relevance"`
	Accuracy           float64 `json:"accuracy"`
	CompletenessScore  float64 `json:"completeness_score"`
	SemanticSimilarity float64 `json:"semantic_similarity"`
	Composite          float64 `json:"composite"`
}

// Fallback names a recoverable failure recorded on a benchmark entry.
type Fallback string

const (
	FallbackQueryFailed      Fallback = "query_failed"
	FallbackValidationRetry  Fallback = "validation_rewrapped"
	FallbackValidationFailed Fallback = "validation_failed"
	FallbackModelParse       Fallback = "model_output_unparsed"
	FallbackModelRepaired    Fallback = "model_output_repaired"
	FallbackGoldParse        Fallback = "gold_output_unparsed"
)

// BenchmarkEntry is the recorded outcome of one dataset entry.
// GoldOutput and ModelOutput hold structured answers as raw JSON.
type BenchmarkEntry struct {
	ID                 string          `json:"id"`
	Category           string          `json:"category"`
	GoldOutput         json.RawMessage `json:"gold_output"`
	ModelOutput        json.RawMessage `json:"model_output"`
	SemanticSimilarity float64         `json:"semantic_similarity"`
	Scores             ScoreReport     `json:"scores"`
	Fallbacks          []Fallback      `json:"fallbacks,omitempty"`
}

// Rating is the qualitative band of an average semantic similarity.
type Rating string

const (
	RatingExcellent        Rating = "Excellent"
	RatingGood             Rating = "Good"
	RatingSatisfactory     Rating = "Satisfactory"
	RatingNeedsImprovement Rating = "Needs Improvement"
	RatingPoor             Rating = "Poor"
)

// RatingFor maps an average score onto its rating band.
func RatingFor(avg float64) Rating {
	switch {
	case avg >= 0.8:
		return RatingExcellent
	case avg >= 0.7:
		return RatingGood
	case avg >= 0.6:
		return RatingSatisfactory
	case avg >= 0.5:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}

// Summary aggregates a benchmark run.
type Summary struct {
	TotalEntries      int         `json:"total_entries"`
	AverageScore      float64     `json:"average_score"`
	PerformanceRating Rating      `json:"performance_rating"`
	Averages          ScoreReport `json:"averages"`
	RunID             string      `json:"run_id,omitempty"`
	StartedAt         time.Time   `json:"started_at"`
	FinishedAt        time.Time   `json:"finished_at"`
	Partial           bool        `json:"partial"`
}

// Summarize computes the summary of entries. The average score and rating
// are based on semantic similarity; an empty run averages to zero.
func Summarize(entries []BenchmarkEntry) Summary {
	s := Summary{TotalEntries: len(entries)}
	if len(entries) == 0 {
		s.PerformanceRating = RatingFor(0)
		return s
	}
	var sum ScoreReport
	for _, e := range entries {
		sum.Relevance += e.Scores.Relevance
		sum.Accuracy += e.Scores.Accuracy
		sum.CompletenessScore += e.Scores.CompletenessScore
		sum.SemanticSimilarity += e.SemanticSimilarity
		sum.Composite += e.Scores.Composite
	}
	n := float64(len(entries))
	s.Averages = ScoreReport{
		Relevance:          sum.Relevance / n,
		Accuracy:           sum.Accuracy / n,
		CompletenessScore:  sum.CompletenessScore / n,
		SemanticSimilarity: sum.SemanticSimilarity / n,
		Composite:          sum.Composite / n,
	}
	s.AverageScore = s.Averages.SemanticSimilarity
	s.PerformanceRating = RatingFor(s.AverageScore)
	return s
}

// Report is the persisted result of a benchmark run.
type Report struct {
	Summary         Summary          `json:"summary"`
	DetailedResults []BenchmarkEntry `json:"detailed_results"`
}

// SpeakerType identifies the source of a chat message.
type SpeakerType int

const (
	// SpeakerTypeHuman represents a human user.
	SpeakerTypeHuman SpeakerType = iota + 1
	// SpeakerTypeAI represents an AI assistant.
	SpeakerTypeAI
)

// Label returns the prefix used when rendering a turn into a prompt.
func (s SpeakerType) Label() string {
	if s == SpeakerTypeAI {
		return "Assistant"
	}
	return "User"
}

// Turn is a single message in an assistant session.
type Turn struct {
	Session   string      `json:"session"`
	Speaker   SpeakerType `json:"speaker"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// Checkpoint records benchmark progress for resuming a run.
type Checkpoint struct {
	RunID     string    `json:"run_id"`
	LastIndex int       `json:"last_index"` // index of the last completed dataset entry
	UpdatedAt time.Time `json:"updated_at"`
}

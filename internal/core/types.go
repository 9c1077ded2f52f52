package core

import (
	"strings"
	"time"
)

const (
	SakhiName      = "Sakhi"
	SakhiUserAgent = "Sakhi-Core/0.1"
	SakhiVersion   = "0.1.0"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one persisted entry of a user's conversation. Never mutated once stored.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is the wire shape sent to generation backends.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Signal string

const (
	SignalYes Signal = "YES"
	SignalNo  Signal = "NO"
)

// Classification is derived per turn and never persisted.
type Classification struct {
	Language   string
	Signal     Signal
	Confidence float64
}

func (c Classification) NeedsKnowledge() bool {
	return c.Signal == SignalYes
}

const (
	ModeGeneral = "general"
	ModeMedical = "medical"
)

type Route string

const (
	RouteSLMDirect Route = "slm_direct"
	RouteSLMRAG    Route = "slm_rag"
	RouteOpenAIRAG Route = "openai_rag"
)

// Routes lists every tier, cheapest first.
var Routes = []Route{RouteSLMDirect, RouteSLMRAG, RouteOpenAIRAG}

// Rank orders tiers by cost and capability. Unknown routes rank highest so
// that a corrupted value can never silently downgrade traffic.
func (r Route) Rank() int {
	switch r {
	case RouteSLMDirect:
		return 0
	case RouteSLMRAG:
		return 1
	default:
		return 2
	}
}

func (r Route) Valid() bool {
	switch r {
	case RouteSLMDirect, RouteSLMRAG, RouteOpenAIRAG:
		return true
	}
	return false
}

func (r Route) NeedsRetrieval() bool {
	return r != RouteSLMDirect
}

func (r Route) Mode() string {
	if r == RouteSLMDirect {
		return ModeGeneral
	}
	return ModeMedical
}

// Escalate returns the higher of two tiers.
func Escalate(a, b Route) Route {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// RetrievalItem is one ranked hit from the knowledge corpus.
type RetrievalItem struct {
	ID             int64   `json:"id"`
	SourceType     string  `json:"source_type"`
	Title          string  `json:"title,omitempty"`
	Content        string  `json:"content"`
	Score          float32 `json:"score"`
	LifeStage      string  `json:"life_stage,omitempty"`
	InfographicURL string  `json:"infographic_url,omitempty"`
	YouTubeLink    string  `json:"youtube_link,omitempty"`
}

func (i RetrievalItem) HasMedia() bool {
	return strings.TrimSpace(i.InfographicURL) != "" || strings.TrimSpace(i.YouTubeLink) != ""
}

// RetrievalContext is the bounded text handed to a generator.
type RetrievalContext struct {
	Text      string
	Items     int
	Tokens    int
	Truncated bool
}

func (c RetrievalContext) Empty() bool {
	return strings.TrimSpace(c.Text) == ""
}

type Media struct {
	InfographicURL string
	YouTubeLink    string
}

type TurnRequest struct {
	UserID   string
	Message  string
	Language string
}

// TurnResult is the externally visible outcome of one turn.
type TurnResult struct {
	Reply          string `json:"reply"`
	Route          Route  `json:"route"`
	Intent         string `json:"intent"`
	Language       string `json:"language"`
	Mode           string `json:"mode"`
	InfographicURL string `json:"infographicUrl,omitempty"`
	YouTubeLink    string `json:"youtubeLink,omitempty"`
	// Degraded is set when retrieval failed and the reply was generated without context.
	Degraded bool `json:"degraded,omitempty"`
}

type Profile struct {
	UserID            string    `json:"user_id"`
	PhoneNumber       string    `json:"phone_number,omitempty"`
	Name              string    `json:"name,omitempty"`
	Gender            string    `json:"gender,omitempty"`
	Location          string    `json:"location,omitempty"`
	PreferredLanguage string    `json:"preferred_language,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// OnboardingComplete reports whether the fields the onboarding flow collects are all present.
func (p Profile) OnboardingComplete() bool {
	return strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.Gender) != "" &&
		strings.TrimSpace(p.Location) != ""
}

type LifeStage struct {
	ID          int64
	Slug        string
	Name        string
	Description string
	Embedding   []float32
}

type ScoredStage struct {
	LifeStage
	Score float32
}

type KnowledgeItem struct {
	ID             int64
	LifeStageID    int64
	SourceType     string
	Title          string
	Content        string
	InfographicURL string
	YouTubeLink    string
	Embedding      []float32
}

const (
	SourceFAQ     = "FAQ"
	SourceArticle = "ARTICLE"
)

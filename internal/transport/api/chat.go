package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/log"
)

const maxBodyBytes = 64 * 1024

type ProfileFinder interface {
	Get(ctx context.Context, userID string) (*core.Profile, error)
	GetByPhone(ctx context.Context, phone string) (*core.Profile, error)
}

type chatRequest struct {
	UserID      string `json:"userId"`
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
	Language    string `json:"language"`
}

type onboardingResponse struct {
	Mode    string   `json:"mode"`
	Reply   string   `json:"reply"`
	Missing []string `json:"missing"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	logger := log.FromCtx(ctx)

	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	profile, status, err := s.resolveUser(ctx, req)
	if err != nil {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	if !profile.OnboardingComplete() {
		writeJSON(w, http.StatusConflict, onboardingResponse{
			Mode:    "onboarding",
			Reply:   "Please complete your profile before we chat.",
			Missing: missingFields(profile),
		})
		return
	}

	lang := req.Language
	if lang == "" {
		lang = profile.PreferredLanguage
	}

	res, err := s.turns.Handle(ctx, core.TurnRequest{
		UserID:   profile.UserID,
		Message:  req.Message,
		Language: lang,
	})
	if err != nil {
		status, body := errorStatus(err)
		if res != nil {
			// The reply was generated but not stored; keep it in the logs for reconciliation.
			logger.Error().Err(err).Str("user_id", profile.UserID).Str("reply", res.Reply).Msg("turn finished with unsaved reply")
		} else {
			logger.Error().Err(err).Str("user_id", profile.UserID).Msg("turn failed")
		}
		writeJSON(w, status, body)
		return
	}

	logger.Info().
		Str("user_id", profile.UserID).
		Str("route", string(res.Route)).
		Float64("elapsed_ms", elapsed(start)).
		Msg("chat served")
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) resolveUser(ctx context.Context, req chatRequest) (*core.Profile, int, error) {
	var (
		p   *core.Profile
		err error
	)
	switch {
	case strings.TrimSpace(req.UserID) != "":
		p, err = s.profiles.Get(ctx, strings.TrimSpace(req.UserID))
	case strings.TrimSpace(req.PhoneNumber) != "":
		p, err = s.profiles.GetByPhone(ctx, req.PhoneNumber)
	default:
		return nil, http.StatusBadRequest, errors.New("userId or phoneNumber is required")
	}

	if errors.Is(err, core.ErrNotFound) {
		return nil, http.StatusNotFound, errors.New("user not found")
	}
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("profile lookup failed")
		return nil, http.StatusInternalServerError, errors.New("profile lookup failed")
	}
	return p, 0, nil
}

func errorStatus(err error) (int, errorResponse) {
	if errors.Is(err, core.ErrInvalidRequest) {
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	}

	stage, ok := core.StageOf(err)
	if !ok {
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}

	body := errorResponse{Error: string(stage) + " failed", Stage: string(stage)}
	switch stage {
	case core.StagePersistence:
		return http.StatusInternalServerError, body
	default:
		return http.StatusBadGateway, body
	}
}

func missingFields(p *core.Profile) []string {
	var out []string
	if p.Name == "" {
		out = append(out, "name")
	}
	if p.Gender == "" {
		out = append(out, "gender")
	}
	if p.Location == "" {
		out = append(out, "location")
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

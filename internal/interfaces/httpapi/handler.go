package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hoopsight/prospect-calendar/internal/domain/game"
	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

// demoUserID stands in for the ranking list owner until real auth lands in
// front of this service. Live boards are the only per-user surface.
const demoUserID = "demo-scout"

// JobPublisher enqueues delayed background jobs that call back into the
// internal endpoints.
type JobPublisher interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type Handler struct {
	scheduleService *usecase.ScheduleService
	resolverService *usecase.ResolverService
	syncService     *usecase.DirectorySyncService
	overrides       team.OverrideRepository
	jobPublisher    JobPublisher
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	scheduleService *usecase.ScheduleService,
	resolverService *usecase.ResolverService,
	syncService *usecase.DirectorySyncService,
	overrides team.OverrideRepository,
	jobPublisher JobPublisher,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scheduleService: scheduleService,
		resolverService: resolverService,
		syncService:     syncService,
		overrides:       overrides,
		jobPublisher:    jobPublisher,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestUserID identifies the ranking list owner for liveboard requests.
func requestUserID(r *http.Request) string {
	if userID := strings.TrimSpace(r.Header.Get("X-User-ID")); userID != "" {
		return userID
	}
	return demoUserID
}

type gameDTO struct {
	GameKey     string   `json:"game_key"`
	DateKey     string   `json:"date_key"`
	Tipoff      string   `json:"tipoff"`
	HomeTeam    string   `json:"home_team"`
	AwayTeam    string   `json:"away_team"`
	HomeScore   *int     `json:"home_score,omitempty"`
	AwayScore   *int     `json:"away_score,omitempty"`
	Status      string   `json:"status"`
	LeagueLabel string   `json:"league_label,omitempty"`
	Venue       string   `json:"venue,omitempty"`
	Clock       string   `json:"clock,omitempty"`
	HomeLogoURL string   `json:"home_logo_url,omitempty"`
	AwayLogoURL string   `json:"away_logo_url,omitempty"`
	Providers   []string `json:"providers,omitempty"`
}

func gameToDTO(item game.Game) gameDTO {
	return gameDTO{
		GameKey:     item.GameKey,
		DateKey:     item.DateKey,
		Tipoff:      item.Tipoff.Format(time.RFC3339),
		HomeTeam:    item.HomeTeam,
		AwayTeam:    item.AwayTeam,
		HomeScore:   item.HomeScore,
		AwayScore:   item.AwayScore,
		Status:      item.Status,
		LeagueLabel: item.LeagueLabel,
		Venue:       item.Venue,
		Clock:       item.Clock,
		HomeLogoURL: item.HomeLogoURL,
		AwayLogoURL: item.AwayLogoURL,
		Providers:   item.SourceProviderIDs,
	}
}

type calendarDTO struct {
	Source      string               `json:"source"`
	Days        map[string][]gameDTO `json:"days"`
	GameCount   int                  `json:"game_count"`
	Cached      bool                 `json:"cached"`
	Stale       bool                 `json:"stale"`
	GeneratedAt time.Time            `json:"generated_at"`
}

func calendarToDTO(result usecase.CalendarResult) calendarDTO {
	days := make(map[string][]gameDTO, len(result.Days))
	for day, games := range result.Days {
		items := make([]gameDTO, 0, len(games))
		for _, g := range games {
			items = append(items, gameToDTO(g))
		}
		days[day] = items
	}
	return calendarDTO{
		Source:      result.Source,
		Days:        days,
		GameCount:   result.GameCount,
		Cached:      result.Cached,
		Stale:       result.Stale,
		GeneratedAt: result.GeneratedAt,
	}
}

type resolvedTeamDTO struct {
	ProviderID     string `json:"provider_id"`
	ProviderTeamID string `json:"provider_team_id"`
	CanonicalName  string `json:"canonical_name"`
	LeagueID       string `json:"league_id,omitempty"`
	SeasonFormat   string `json:"season_format"`
	Country        string `json:"country,omitempty"`
}

func resolvedTeamToDTO(item team.ResolvedTeam) resolvedTeamDTO {
	return resolvedTeamDTO{
		ProviderID:     item.ProviderID,
		ProviderTeamID: item.ProviderTeamID,
		CanonicalName:  item.CanonicalName,
		LeagueID:       item.LeagueID,
		SeasonFormat:   item.SeasonFormat,
		Country:        item.Country,
	}
}

type overrideDTO struct {
	RawName        string `json:"raw_name" validate:"required,min=2"`
	ProviderID     string `json:"provider_id" validate:"required"`
	ProviderTeamID string `json:"provider_team_id" validate:"required"`
	LeagueID       string `json:"league_id,omitempty" validate:"omitempty"`
}

// Package api defines the HTTP wire format shared by the server and the
// client: the response envelope, request bodies and route paths.
package api

import (
	"encoding/json"
	"net/url"

	"github.com/roach88/crease/internal/ir"
)

// Envelope wraps every response body. Exactly one of Data and Error is set.
type Envelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody describes a rejected request. Code is a scoring error code for
// engine rejections and one of the transport codes below otherwise. Fields
// maps offending input fields to messages.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Transport-level error codes.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL"
)

// CreateTeamRequest is the body of POST /api/teams.
type CreateTeamRequest struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

// CreateMatchRequest is the body of POST /api/matches.
type CreateMatchRequest struct {
	Team1ID       string `json:"team1_id"`
	Team2ID       string `json:"team2_id"`
	Format        string `json:"format"`
	TournamentID  string `json:"tournament_id,omitempty"`
	Venue         string `json:"venue,omitempty"`
	ScheduledDate string `json:"scheduled_date,omitempty"`
}

// StartInningsRequest is the body of POST /api/innings.
type StartInningsRequest struct {
	MatchID       string `json:"match_id"`
	BattingTeamID string `json:"batting_team_id"`
	BowlingTeamID string `json:"bowling_team_id"`
	InningNumber  int    `json:"inning_number"`
}

// RecordDeliveryRequest is the body of POST /api/innings/{id}/deliveries.
// Empty extra and wicket types mean none.
type RecordDeliveryRequest struct {
	OverNumber  int           `json:"over_number"`
	BallNumber  int           `json:"ball_number"`
	RunsOffBat  int           `json:"runs_off_bat"`
	ExtraType   ir.ExtraType  `json:"extra_type,omitempty"`
	WicketType  ir.WicketType `json:"wicket_type,omitempty"`
	OutPlayerID string        `json:"out_player_id,omitempty"`
}

// AssignRoleRequest is the body of PUT /api/innings/{id}/roles.
type AssignRoleRequest struct {
	PlayerID string  `json:"player_id"`
	Role     ir.Role `json:"role"`
}

// EndInningsRequest is the body of POST /api/innings/{id}/end.
type EndInningsRequest struct {
	Reason ir.CloseReason `json:"reason"`
}

// Deleted is the response to a delete. Deleting a missing resource also
// succeeds.
type Deleted struct {
	ID string `json:"id"`
}

// Fixed paths.
const (
	PathHealth  = "/api/health"
	PathFormats = "/api/formats"
	PathTeams   = "/api/teams"
	PathMatches = "/api/matches"
	PathInnings = "/api/innings"
)

// Route templates with an {id} variable.
const (
	RouteTeam       = "/api/teams/{id}"
	RouteMatch      = "/api/matches/{id}"
	RouteLive       = "/api/matches/{id}/live"
	RouteStream     = "/api/matches/{id}/stream"
	RouteUndo       = "/api/matches/{id}/undo"
	RouteAbandon    = "/api/matches/{id}/abandon"
	RouteDeliveries = "/api/innings/{id}/deliveries"
	RouteRoles      = "/api/innings/{id}/roles"
	RouteEndInnings = "/api/innings/{id}/end"
)

// TeamPath returns the path of one team.
func TeamPath(id string) string { return PathTeams + "/" + url.PathEscape(id) }

// MatchPath returns the path of one match.
func MatchPath(id string) string { return PathMatches + "/" + url.PathEscape(id) }

// LivePath returns the live snapshot path of a match.
func LivePath(matchID string) string { return MatchPath(matchID) + "/live" }

// StreamPath returns the websocket stream path of a match.
func StreamPath(matchID string) string { return MatchPath(matchID) + "/stream" }

// UndoPath returns the undo path of a match.
func UndoPath(matchID string) string { return MatchPath(matchID) + "/undo" }

// AbandonPath returns the abandon path of a match.
func AbandonPath(matchID string) string { return MatchPath(matchID) + "/abandon" }

// DeliveriesPath returns the delivery path of an innings.
func DeliveriesPath(inningsID string) string {
	return PathInnings + "/" + url.PathEscape(inningsID) + "/deliveries"
}

// RolesPath returns the role assignment path of an innings.
func RolesPath(inningsID string) string {
	return PathInnings + "/" + url.PathEscape(inningsID) + "/roles"
}

// EndInningsPath returns the explicit close path of an innings.
func EndInningsPath(inningsID string) string {
	return PathInnings + "/" + url.PathEscape(inningsID) + "/end"
}

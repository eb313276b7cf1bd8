// Package service holds the use cases behind the HTTP API and the background jobs.
// Every exported method that acts on behalf of a person takes the request *auth.Session
// explicitly; nothing is read from globals.
package service

import (
	"context"
	"time"

	"github.com/Spok95/school-discipline/internal/models"
)

// Store is the persistence the services need; *db.Store satisfies it.
type Store interface {
	ListRules(ctx context.Context) ([]models.Rule, error)
	GetRule(ctx context.Context, code string) (*models.Rule, error)
	ReplaceRules(ctx context.Context, rules []models.Rule) error

	CreateClass(ctx context.Context, in models.NewClass) (*models.Class, error)
	GetClass(ctx context.Context, id string) (*models.Class, error)
	ListClasses(ctx context.Context, grade int) ([]models.Class, error)
	ListGrades(ctx context.Context) ([]int, error)
	CreateStudent(ctx context.Context, in models.NewStudent) (*models.Student, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	ListStudentsByClass(ctx context.Context, classID string) ([]models.Student, error)

	CreateRecord(ctx context.Context, rec *models.Record) error
	CreateCorrection(ctx context.Context, originalID string, build func(orig models.Record) (models.Record, error)) (*models.Record, error)
	GetRecord(ctx context.Context, id string) (*models.Record, error)
	ListRecords(ctx context.Context, f models.RecordFilter) ([]models.Record, error)

	LockedRanking(ctx context.Context, weekKey string, grade int) ([]models.WeeklyRanking, error)
	// SaveLockedRanking reads roster and records under the week's lock and stores build's rows.
	SaveLockedRanking(ctx context.Context, weekKey string, grade int,
		build func(roster []models.Class, records []models.Record) []models.WeeklyRanking) ([]models.WeeklyRanking, error)
	LockedGrades(ctx context.Context, weekKey string) ([]int, error)

	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetClaims(ctx context.Context, userID string) (*models.UserClaims, error)
	SetClaims(ctx context.Context, c models.UserClaims) error
}

type clock func() time.Time

const (
	// запись можно внести задним числом, но не из будущего
	maxClockSkew = 10 * time.Minute
	maxListLimit = 500
)

var timeNow = time.Now

package db

import "context"

type Client interface {
	Close() error
	UserExists(ctx context.Context, userID int64) (bool, error)
	AddUser(ctx context.Context, userID int64, userName string) error
	AddPrediction(ctx context.Context, text string, userID int64) error
	GetRandomApprovedPrediction(ctx context.Context) (*Prediction, error)
	GetUnapprovedPredictions(ctx context.Context) ([]Prediction, error)
	UpdatePredictionStatus(ctx context.Context, predictionID int64, state ApprovalState) error
	GetPredictionByID(ctx context.Context, predictionID int64) (*Prediction, error)
	GetUserPredictions(ctx context.Context, userID int64) ([]Prediction, error)
	GetUserStatistic(ctx context.Context, userID int64) (map[ApprovalState]int, error)
}
